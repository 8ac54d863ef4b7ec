package vector

import (
	"fmt"

	"basegraph.app/correlate/core/config"
)

// New builds the Index selected by cfg.Vector.Backend. conn is only used by
// the pgvector backend.
func New(cfg config.Config, conn Conn) (Index, error) {
	switch cfg.Vector.Backend {
	case config.VectorBackendPGVector:
		if conn == nil {
			return nil, fmt.Errorf("pgvector backend requires a database connection")
		}
		return NewPGVectorIndex(conn, cfg.OpenAI.Dimension), nil
	case config.VectorBackendTypesense:
		return NewTypesenseIndex(TypesenseConfig{
			URL:              cfg.Vector.TypesenseURL,
			APIKey:           cfg.Vector.TypesenseAPIKey,
			CollectionPrefix: cfg.Vector.CollectionPrefix,
			Dimension:        cfg.OpenAI.Dimension,
		})
	case config.VectorBackendMemory:
		return NewMemoryIndex(), nil
	}
	return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
}
