package canvas

import "encoding/json"

// Viewport is the user's pan/zoom position on the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// NodeState is the persisted shape of a node. Type carries "kind/subtype".
type NodeState struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// EdgeState is the persisted shape of an edge. Handles are omitted when they
// equal the defaults.
type EdgeState struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Document is the serializable composition format: the sole payload
// exchanged with the persistence service and the load-time input.
type Document struct {
	Nodes    []NodeState `json:"nodes"`
	Edges    []EdgeState `json:"edges"`
	Viewport Viewport    `json:"viewport"`
}

// Snapshot builds a Document from live collections.
func Snapshot(nodes []*Node, edges []*Edge, vp Viewport) *Document {
	doc := &Document{
		Nodes:    make([]NodeState, 0, len(nodes)),
		Edges:    make([]EdgeState, 0, len(edges)),
		Viewport: vp,
	}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, NodeState{
			ID:       n.ID,
			Type:     n.Type(),
			Position: n.Position,
			Data:     n.Data,
		})
	}
	for _, e := range edges {
		doc.Edges = append(doc.Edges, EdgeState{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	return doc
}

// Materialize returns live node and edge collections built from the document.
func (d *Document) Materialize() ([]*Node, []*Edge) {
	nodes := make([]*Node, 0, len(d.Nodes))
	for _, s := range d.Nodes {
		kind, subtype := ParseNodeType(s.Type)
		data := s.Data
		if data.Subtype == "" {
			data.Subtype = subtype
		}
		nodes = append(nodes, &Node{
			ID:       s.ID,
			Kind:     kind,
			Position: s.Position,
			Data:     data,
		})
	}
	edges := make([]*Edge, 0, len(d.Edges))
	for _, s := range d.Edges {
		edges = append(edges, &Edge{
			ID:           s.ID,
			Source:       s.Source,
			Target:       s.Target,
			SourceHandle: s.SourceHandle,
			TargetHandle: s.TargetHandle,
		})
	}
	return nodes, edges
}

// Encode serializes the document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// DecodeDocument parses a JSON composition document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
