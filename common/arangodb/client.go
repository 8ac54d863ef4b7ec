package arangodb

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
)

var ErrNotFound = errors.New("document not found")

const graphName = "correlation"

// Vertex collections, one per entity kind.
var nodeCollections = map[string]string{
	"ticket":       "tickets",
	"commit":       "commits",
	"pull_request": "pull_requests",
	"code_file":    "code_files",
	"document":     "documents",
}

// Edge collections keyed by edge label.
var edgeCollections = map[string]string{
	"references": "references",
	"touches":    "touches",
	"mentions":   "mentions",
}

type Client interface {
	// Setup operations
	EnsureDatabase(ctx context.Context) error
	EnsureCollections(ctx context.Context) error
	EnsureGraph(ctx context.Context) error

	// Write operations (for ingestion)
	UpsertNodes(ctx context.Context, nodes []Node) error
	UpsertEdges(ctx context.Context, edges []Edge) error
	TruncateCollections(ctx context.Context) error

	// Read operations
	Traverse(ctx context.Context, start NodeRef, opts TraversalOptions) ([]GraphNode, []GraphEdge, error)

	// Utility
	Close() error
}

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	conn         connection.Connection
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	return &client{
		conn:         conn,
		arangoClient: arangodb.NewClient(conn),
		cfg:          cfg,
	}, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		if _, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil); err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db
	return nil
}

func (c *client) EnsureCollections(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	for _, name := range nodeCollections {
		if err := c.ensureCollection(ctx, name, false); err != nil {
			return err
		}
	}
	for _, name := range edgeCollections {
		if err := c.ensureCollection(ctx, name, true); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) ensureCollection(ctx context.Context, name string, isEdge bool) error {
	exists, err := c.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", name, err)
	}
	if exists {
		return nil
	}

	colType := arangodb.CollectionTypeDocument
	if isEdge {
		colType = arangodb.CollectionTypeEdge
	}
	if _, err := c.db.CreateCollectionV2(ctx, name, &arangodb.CreateCollectionPropertiesV2{Type: &colType}); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	slog.InfoContext(ctx, "arangodb collection created",
		"collection", name,
		"is_edge", isEdge)
	return nil
}

func (c *client) EnsureGraph(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	exists, err := c.db.GraphExists(ctx, graphName)
	if err != nil {
		return fmt.Errorf("check graph exists: %w", err)
	}
	if exists {
		return nil
	}

	changes := []string{nodeCollections["commit"], nodeCollections["pull_request"]}
	graphDef := &arangodb.GraphDefinition{
		Name: graphName,
		EdgeDefinitions: []arangodb.EdgeDefinition{
			{Collection: "references", From: changes, To: []string{nodeCollections["ticket"]}},
			{Collection: "touches", From: changes, To: []string{nodeCollections["code_file"]}},
			{Collection: "mentions", From: []string{nodeCollections["document"]}, To: []string{nodeCollections["ticket"]}},
		},
	}
	if _, err := c.db.CreateGraph(ctx, graphName, graphDef, nil); err != nil {
		return fmt.Errorf("create graph: %w", err)
	}

	slog.InfoContext(ctx, "arangodb graph created", "graph", graphName)
	return nil
}

func (c *client) TruncateCollections(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	start := time.Now()
	var all []string
	for _, name := range nodeCollections {
		all = append(all, name)
	}
	for _, name := range edgeCollections {
		all = append(all, name)
	}

	for _, name := range all {
		col, err := c.db.GetCollection(ctx, name, nil)
		if err != nil {
			return fmt.Errorf("get collection %s: %w", name, err)
		}
		if err := col.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate collection %s: %w", name, err)
		}
	}

	slog.InfoContext(ctx, "arangodb collections truncated",
		"collections", len(all),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

const upsertQuery = `
	FOR d IN @docs
		UPSERT { _key: d._key }
		INSERT d
		REPLACE d
		IN @@collection
		OPTIONS { ignoreErrors: false }
`

// UpsertNodes writes vertices grouped by kind. Re-ingesting a node replaces it.
func (c *client) UpsertNodes(ctx context.Context, nodes []Node) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	grouped := make(map[string][]map[string]any)
	for _, n := range nodes {
		col, err := collectionForKind(n.Kind)
		if err != nil {
			return err
		}
		grouped[col] = append(grouped[col], map[string]any{
			"_key":            makeKey(n.NodeRef),
			"kind":            n.Kind,
			"organization_id": n.OrganizationID,
			"entity_key":      n.Key,
			"title":           n.Title,
		})
	}

	for col, docs := range grouped {
		if err := c.upsert(ctx, col, docs); err != nil {
			return err
		}
	}
	return nil
}

// UpsertEdges writes edges grouped by label. Endpoints need not exist yet;
// a commit may reference a ticket that has not been ingested.
func (c *client) UpsertEdges(ctx context.Context, edges []Edge) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	grouped := make(map[string][]map[string]any)
	for _, e := range edges {
		col, ok := edgeCollections[e.Label]
		if !ok {
			return fmt.Errorf("unknown edge label %q", e.Label)
		}
		from, err := vertexID(e.From)
		if err != nil {
			return err
		}
		to, err := vertexID(e.To)
		if err != nil {
			return err
		}
		grouped[col] = append(grouped[col], map[string]any{
			"_key":            makeEdgeKey(from, to),
			"_from":           from,
			"_to":             to,
			"label":           e.Label,
			"organization_id": e.From.OrganizationID,
		})
	}

	for col, docs := range grouped {
		if err := c.upsert(ctx, col, docs); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) upsert(ctx context.Context, collection string, docs []map[string]any) error {
	if len(docs) == 0 {
		return nil
	}

	start := time.Now()
	cursor, err := c.db.Query(ctx, upsertQuery, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"docs":        docs,
			"@collection": collection,
		},
	})
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	defer cursor.Close()

	slog.DebugContext(ctx, "arangodb documents upserted",
		"collection", collection,
		"count", len(docs),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Traverse walks the correlation graph from start and returns every vertex of
// the same organization within MaxDepth hops.
func (c *client) Traverse(ctx context.Context, start NodeRef, opts TraversalOptions) ([]GraphNode, []GraphEdge, error) {
	if c.db == nil {
		return nil, nil, fmt.Errorf("database not initialized")
	}

	startID, err := vertexID(start)
	if err != nil {
		return nil, nil, err
	}

	direction := "ANY"
	switch opts.Direction {
	case DirectionInbound:
		direction = "INBOUND"
	case DirectionOutbound:
		direction = "OUTBOUND"
	}

	depth := opts.MaxDepth
	if depth <= 0 {
		depth = 1
	}

	bindVars := map[string]any{
		"start": startID,
		"depth": depth,
		"org":   start.OrganizationID,
	}
	labelFilter := ""
	if len(opts.Labels) > 0 {
		labelFilter = "FILTER e.label IN @labels"
		bindVars["labels"] = opts.Labels
	}

	query := fmt.Sprintf(`
		FOR v, e, p IN 1..@depth %s @start GRAPH "%s"
			FILTER e.organization_id == @org
			%s
			RETURN {
				vertex: { id: v._id, kind: v.kind, key: v.entity_key, title: v.title },
				edge: { from: e._from, to: e._to, label: e.label },
				depth: LENGTH(p.edges)
			}
	`, direction, graphName, labelFilter)

	begin := time.Now()
	cursor, err := c.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, nil, fmt.Errorf("execute traversal: %w", err)
	}
	defer cursor.Close()

	ids := map[string]string{startID: start.Kind + ":" + start.Key}
	nodes := make(map[string]GraphNode)
	var rawEdges []GraphEdge

	for cursor.HasMore() {
		var doc struct {
			Vertex struct {
				ID    string `json:"id"`
				Kind  string `json:"kind"`
				Key   string `json:"key"`
				Title string `json:"title"`
			} `json:"vertex"`
			Edge struct {
				From  string `json:"from"`
				To    string `json:"to"`
				Label string `json:"label"`
			} `json:"edge"`
			Depth int `json:"depth"`
		}
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, nil, fmt.Errorf("read document: %w", err)
		}

		rawEdges = append(rawEdges, GraphEdge{From: doc.Edge.From, To: doc.Edge.To, Label: doc.Edge.Label})

		// Dangling edge targets come back as null vertices.
		if doc.Vertex.ID == "" || doc.Vertex.ID == startID {
			continue
		}
		ref := doc.Vertex.Kind + ":" + doc.Vertex.Key
		ids[doc.Vertex.ID] = ref
		if existing, ok := nodes[ref]; ok && existing.Depth <= doc.Depth {
			continue
		}
		nodes[ref] = GraphNode{Kind: doc.Vertex.Kind, Key: doc.Vertex.Key, Title: doc.Vertex.Title, Depth: doc.Depth}
	}

	edges := make([]GraphEdge, 0, len(rawEdges))
	seen := make(map[string]struct{}, len(rawEdges))
	for _, e := range rawEdges {
		from, okFrom := ids[e.From]
		to, okTo := ids[e.To]
		if !okFrom || !okTo {
			continue
		}
		k := from + "->" + to
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		edges = append(edges, GraphEdge{From: from, To: to, Label: e.Label})
	}

	out := make([]GraphNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n)
	}

	slog.DebugContext(ctx, "arangodb traversal completed",
		"start", startID,
		"depth", depth,
		"nodes", len(out),
		"edges", len(edges),
		"duration_ms", time.Since(begin).Milliseconds())

	return out, edges, nil
}

func collectionForKind(kind string) (string, error) {
	col, ok := nodeCollections[kind]
	if !ok {
		return "", fmt.Errorf("unknown node kind %q", kind)
	}
	return col, nil
}

func vertexID(ref NodeRef) (string, error) {
	col, err := collectionForKind(ref.Kind)
	if err != nil {
		return "", err
	}
	return col + "/" + makeKey(ref), nil
}

// makeKey hashes the tenant-qualified natural key; entity keys may contain
// characters ArangoDB rejects in _key.
func makeKey(ref NodeRef) string {
	hash := md5.Sum([]byte(strconv.FormatInt(ref.OrganizationID, 10) + "/" + strings.TrimSpace(ref.Key)))
	return hex.EncodeToString(hash[:])[:16]
}

func makeEdgeKey(from, to string) string {
	hash := md5.Sum([]byte(from + "->" + to))
	return hex.EncodeToString(hash[:])[:16]
}
