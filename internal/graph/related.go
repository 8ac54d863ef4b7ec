package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"basegraph.app/correlate/common"
	"basegraph.app/correlate/common/arangodb"
	"basegraph.app/correlate/internal/domain"
	"basegraph.app/correlate/internal/indexer"
	"basegraph.app/correlate/internal/model"
)

const (
	MaxDepth      = 2
	neighborLimit = 10
	maxNodes      = 100
)

type TicketStore interface {
	GetByKey(ctx context.Context, orgID int64, key string) (*model.Ticket, error)
}

type CommitStore interface {
	GetBySHAPrefix(ctx context.Context, orgID int64, prefix string) ([]model.Commit, error)
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.Commit, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.Commit, error)
}

type PullRequestStore interface {
	Get(ctx context.Context, orgID int64, repository string, number int64) (*model.PullRequest, error)
	ListByTicket(ctx context.Context, orgID int64, ticketKey string) ([]model.PullRequest, error)
	ListTouchingFile(ctx context.Context, orgID int64, path string, limit int32) ([]model.PullRequest, error)
}

type CodeFileStore interface {
	Get(ctx context.Context, orgID int64, repository, path string) (*model.CodeFile, error)
}

type DocumentStore interface {
	Get(ctx context.Context, orgID int64, sourceID string) (*model.Document, error)
	ListMentioning(ctx context.Context, orgID int64, term string, limit int32) ([]model.Document, error)
}

type Stores struct {
	Tickets      TicketStore
	Commits      CommitStore
	PullRequests PullRequestStore
	CodeFiles    CodeFileStore
	Documents    DocumentStore
}

// Service answers related-entity lookups. With an ArangoDB client it
// traverses the projection; without one, or when the traversal fails, it
// walks the entity store.
type Service struct {
	stores Stores
	client arangodb.Client
}

func NewService(stores Stores, client arangodb.Client) *Service {
	return &Service{stores: stores, client: client}
}

func (s *Service) Related(ctx context.Context, orgID int64, kind model.EntityKind, key string, depth int) (*model.RelatedEntities, error) {
	if orgID <= 0 {
		return nil, domain.Invalid("organization_id", "required")
	}
	if !kind.Valid() {
		return nil, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.Invalid("key", "required")
	}
	if depth == 0 {
		depth = 1
	}
	if depth < 1 || depth > MaxDepth {
		return nil, domain.Invalid("depth", fmt.Sprintf("must be between 1 and %d", MaxDepth))
	}

	start, err := s.node(ctx, orgID, kind, key)
	if err != nil {
		return nil, err
	}

	if s.client != nil {
		related, err := s.traverse(ctx, orgID, start, depth)
		if err == nil {
			return related, nil
		}
		slog.WarnContext(ctx, "graph traversal failed, walking entity store", "error", err)
	}
	return s.walk(ctx, orgID, start, depth)
}

func (s *Service) traverse(ctx context.Context, orgID int64, start model.GraphNode, depth int) (*model.RelatedEntities, error) {
	nodes, edges, err := s.client.Traverse(ctx,
		arangodb.NodeRef{Kind: string(start.Kind), OrganizationID: orgID, Key: start.Key},
		arangodb.TraversalOptions{Direction: arangodb.DirectionAny, MaxDepth: depth})
	if err != nil {
		return nil, err
	}

	out := &model.RelatedEntities{Start: start, Nodes: []model.GraphNode{}, Edges: []model.GraphEdge{}}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, model.GraphNode{Kind: model.EntityKind(n.Kind), Key: n.Key, Title: n.Title, Depth: n.Depth})
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, model.GraphEdge{From: e.From, To: e.To, Label: e.Label})
	}
	sortNodes(out.Nodes)
	return out, nil
}

type hop struct {
	node  model.GraphNode
	edges []model.GraphEdge
}

// walk is a breadth-first expansion over the entity store.
func (s *Service) walk(ctx context.Context, orgID int64, start model.GraphNode, depth int) (*model.RelatedEntities, error) {
	out := &model.RelatedEntities{Start: start, Nodes: []model.GraphNode{}, Edges: []model.GraphEdge{}}
	seen := map[string]struct{}{ref(start.Kind, start.Key): {}}
	edgeSeen := map[string]struct{}{}
	frontier := []model.GraphNode{start}

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []model.GraphNode
		for _, n := range frontier {
			hops, err := s.neighbors(ctx, orgID, n)
			if err != nil {
				return nil, err
			}
			for _, h := range hops {
				for _, e := range h.edges {
					k := e.From + "->" + e.To
					if _, ok := edgeSeen[k]; !ok {
						edgeSeen[k] = struct{}{}
						out.Edges = append(out.Edges, e)
					}
				}
				r := ref(h.node.Kind, h.node.Key)
				if _, ok := seen[r]; ok || len(out.Nodes) >= maxNodes {
					continue
				}
				seen[r] = struct{}{}
				h.node.Depth = d
				out.Nodes = append(out.Nodes, h.node)
				next = append(next, h.node)
			}
		}
		frontier = next
	}

	sortNodes(out.Nodes)
	return out, nil
}

func (s *Service) neighbors(ctx context.Context, orgID int64, n model.GraphNode) ([]hop, error) {
	self := ref(n.Kind, n.Key)
	switch n.Kind {
	case model.KindTicket:
		commits, err := s.stores.Commits.ListByTicket(ctx, orgID, n.Key)
		if err != nil {
			return nil, fmt.Errorf("commits for %s: %w", n.Key, err)
		}
		prs, err := s.stores.PullRequests.ListByTicket(ctx, orgID, n.Key)
		if err != nil {
			return nil, fmt.Errorf("pull requests for %s: %w", n.Key, err)
		}
		docs, err := s.stores.Documents.ListMentioning(ctx, orgID, n.Key, neighborLimit)
		if err != nil {
			return nil, fmt.Errorf("documents mentioning %s: %w", n.Key, err)
		}
		var hops []hop
		for _, c := range common.Head(commits, neighborLimit) {
			node := commitNode(c)
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{edge(node, self, indexer.LinkReferences)}})
		}
		for _, p := range common.Head(prs, neighborLimit) {
			node := pullRequestNode(p)
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{edge(node, self, indexer.LinkReferences)}})
		}
		for _, d := range docs {
			node := model.GraphNode{Kind: model.KindDocument, Key: d.EntityKey(), Title: d.Title}
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{edge(node, self, indexer.LinkMentions)}})
		}
		return hops, nil

	case model.KindCommit:
		c, err := s.commit(ctx, orgID, n.Key)
		if err != nil {
			return nil, err
		}
		return changeHops(self, c.Repository, c.TicketReferences, c.FilesChanged), nil

	case model.KindPullRequest:
		repository, number, err := model.SplitPullRequestKey(n.Key)
		if err != nil {
			return nil, domain.Invalid("key", err.Error())
		}
		p, err := s.stores.PullRequests.Get(ctx, orgID, repository, number)
		if err != nil {
			return nil, err
		}
		return changeHops(self, p.Repository, p.TicketReferences, p.FilesChanged), nil

	case model.KindCodeFile:
		repository, path, err := model.SplitCodeFileKey(n.Key)
		if err != nil {
			return nil, domain.Invalid("key", err.Error())
		}
		commits, err := s.stores.Commits.ListTouchingFile(ctx, orgID, path, neighborLimit)
		if err != nil {
			return nil, fmt.Errorf("commits touching %s: %w", path, err)
		}
		prs, err := s.stores.PullRequests.ListTouchingFile(ctx, orgID, path, neighborLimit)
		if err != nil {
			return nil, fmt.Errorf("pull requests touching %s: %w", path, err)
		}
		var hops []hop
		for _, c := range commits {
			if c.Repository != repository {
				continue
			}
			node := commitNode(c)
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{edge(node, self, indexer.LinkTouches)}})
		}
		for _, p := range prs {
			if p.Repository != repository {
				continue
			}
			node := pullRequestNode(p)
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{edge(node, self, indexer.LinkTouches)}})
		}
		return hops, nil

	case model.KindDocument:
		d, err := s.stores.Documents.Get(ctx, orgID, n.Key)
		if err != nil {
			return nil, err
		}
		var hops []hop
		for _, key := range common.ExtractTicketKeys(d.Title, d.Body) {
			node := model.GraphNode{Kind: model.KindTicket, Key: key}
			hops = append(hops, hop{node: node, edges: []model.GraphEdge{{From: self, To: ref(model.KindTicket, key), Label: indexer.LinkMentions}}})
		}
		return hops, nil
	}
	return nil, nil
}

// node loads the start entity so unknown keys surface as NotFound.
func (s *Service) node(ctx context.Context, orgID int64, kind model.EntityKind, key string) (model.GraphNode, error) {
	switch kind {
	case model.KindTicket:
		t, err := s.stores.Tickets.GetByKey(ctx, orgID, key)
		if err != nil {
			return model.GraphNode{}, err
		}
		return model.GraphNode{Kind: kind, Key: t.Key, Title: t.Summary}, nil
	case model.KindCommit:
		c, err := s.commit(ctx, orgID, key)
		if err != nil {
			return model.GraphNode{}, err
		}
		return commitNode(*c), nil
	case model.KindPullRequest:
		repository, number, err := model.SplitPullRequestKey(key)
		if err != nil {
			return model.GraphNode{}, domain.Invalid("key", err.Error())
		}
		p, err := s.stores.PullRequests.Get(ctx, orgID, repository, number)
		if err != nil {
			return model.GraphNode{}, err
		}
		return pullRequestNode(*p), nil
	case model.KindCodeFile:
		repository, path, err := model.SplitCodeFileKey(key)
		if err != nil {
			return model.GraphNode{}, domain.Invalid("key", err.Error())
		}
		f, err := s.stores.CodeFiles.Get(ctx, orgID, repository, path)
		if err != nil {
			return model.GraphNode{}, err
		}
		return model.GraphNode{Kind: kind, Key: f.EntityKey(), Title: f.FilePath}, nil
	case model.KindDocument:
		d, err := s.stores.Documents.Get(ctx, orgID, key)
		if err != nil {
			return model.GraphNode{}, err
		}
		return model.GraphNode{Kind: kind, Key: d.SourceID, Title: d.Title}, nil
	}
	return model.GraphNode{}, domain.Invalid("kind", fmt.Sprintf("unknown kind %q", kind))
}

func (s *Service) commit(ctx context.Context, orgID int64, key string) (*model.Commit, error) {
	repository, sha, err := model.SplitCommitKey(key)
	if err != nil {
		return nil, domain.Invalid("key", err.Error())
	}
	commits, err := s.stores.Commits.GetBySHAPrefix(ctx, orgID, sha)
	if err != nil {
		return nil, err
	}
	for i := range commits {
		if commits[i].Repository == repository && commits[i].SHA == sha {
			return &commits[i], nil
		}
	}
	return nil, fmt.Errorf("commit %s: %w", key, domain.ErrNotFound)
}

func changeHops(self, repository string, tickets, files []string) []hop {
	var hops []hop
	for _, key := range tickets {
		node := model.GraphNode{Kind: model.KindTicket, Key: key}
		hops = append(hops, hop{node: node, edges: []model.GraphEdge{{From: self, To: ref(node.Kind, key), Label: indexer.LinkReferences}}})
	}
	for _, path := range common.Head(files, neighborLimit) {
		key := model.CodeFile{Repository: repository, FilePath: path}.EntityKey()
		node := model.GraphNode{Kind: model.KindCodeFile, Key: key, Title: path}
		hops = append(hops, hop{node: node, edges: []model.GraphEdge{{From: self, To: ref(node.Kind, key), Label: indexer.LinkTouches}}})
	}
	return hops
}

func commitNode(c model.Commit) model.GraphNode {
	title, _, _ := strings.Cut(c.Message, "\n")
	return model.GraphNode{Kind: model.KindCommit, Key: c.EntityKey(), Title: title}
}

func pullRequestNode(p model.PullRequest) model.GraphNode {
	return model.GraphNode{Kind: model.KindPullRequest, Key: p.EntityKey(), Title: p.Title}
}

func edge(from model.GraphNode, to, label string) model.GraphEdge {
	return model.GraphEdge{From: ref(from.Kind, from.Key), To: to, Label: label}
}

func ref(kind model.EntityKind, key string) string {
	return string(kind) + ":" + key
}

func sortNodes(nodes []model.GraphNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth < nodes[j].Depth
		}
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		return nodes[i].Key < nodes[j].Key
	})
}

// IsNotFound reports whether a lookup failed because the entity is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
