package arangodb

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
	DirectionAny      Direction = "any"
)

// NodeRef addresses one entity vertex. Kind selects the vertex collection.
type NodeRef struct {
	Kind           string
	OrganizationID int64
	Key            string
}

type Node struct {
	NodeRef
	Title string
}

type Edge struct {
	From  NodeRef
	To    NodeRef
	Label string
}

type GraphNode struct {
	Kind  string
	Key   string
	Title string
	Depth int
}

type GraphEdge struct {
	From  string // kind:key
	To    string // kind:key
	Label string
}

type TraversalOptions struct {
	Direction Direction
	MaxDepth  int
	Labels    []string
}
