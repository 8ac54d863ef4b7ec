// Package graph maintains and queries the correlation graph: which commits and
// pull requests reference which tickets, which files they touch and which
// documents mention which tickets.
package graph

import (
	"context"
	"fmt"

	"basegraph.app/correlate/common/arangodb"
	"basegraph.app/correlate/internal/indexer"
)

// Projection mirrors stored entities into ArangoDB. It is derived data and
// can be rebuilt from the entity store.
type Projection struct {
	client arangodb.Client
}

func NewProjection(client arangodb.Client) *Projection {
	return &Projection{client: client}
}

func (p *Projection) Ensure(ctx context.Context) error {
	if err := p.client.EnsureDatabase(ctx); err != nil {
		return err
	}
	if err := p.client.EnsureCollections(ctx); err != nil {
		return err
	}
	return p.client.EnsureGraph(ctx)
}

func (p *Projection) WriteEntries(ctx context.Context, entries []indexer.Entry) error {
	nodes, edges := toGraph(entries)
	if err := p.client.UpsertNodes(ctx, nodes); err != nil {
		return fmt.Errorf("graph nodes: %w", err)
	}
	if err := p.client.UpsertEdges(ctx, edges); err != nil {
		return fmt.Errorf("graph edges: %w", err)
	}
	return nil
}

func toGraph(entries []indexer.Entry) ([]arangodb.Node, []arangodb.Edge) {
	nodes := make([]arangodb.Node, 0, len(entries))
	var edges []arangodb.Edge
	for _, e := range entries {
		from := arangodb.NodeRef{Kind: string(e.Kind), OrganizationID: e.OrganizationID, Key: e.Key}
		nodes = append(nodes, arangodb.Node{NodeRef: from, Title: e.Title})
		for _, l := range e.Links {
			edges = append(edges, arangodb.Edge{
				From:  from,
				To:    arangodb.NodeRef{Kind: string(l.Kind), OrganizationID: e.OrganizationID, Key: l.Key},
				Label: l.Label,
			})
		}
	}
	return nodes, edges
}
