package canvas

import (
	"reflect"
	"testing"
)

func TestDocumentRoundTrip(t *testing.T) {
	nodes := []*Node{
		{ID: "in", Kind: KindUtility, Position: Position{X: 10, Y: 20},
			Data: NodeData{Subtype: UtilityInput, Label: "a"}},
		{ID: "p", Kind: KindProgram, Position: Position{X: 200, Y: 20},
			Data: NodeData{Label: "transform",
				InputSlots:  []Slot{{Name: "value", Type: TypeString}},
				OutputSlots: []Slot{{Name: "result", Type: TypeCollection}}}},
		{ID: "m", Kind: KindModel, Data: NodeData{Label: "classifier"}},
	}
	edges := []*Edge{
		{ID: "e1", Source: "in", SourceHandle: "value", Target: "p", TargetHandle: "value"},
		{ID: "e2", Source: "p", SourceHandle: "result", Target: "m", TargetHandle: "input"},
	}
	vp := Viewport{X: -5, Y: 12, Zoom: 1.5}

	doc := Snapshot(nodes, edges, vp)
	if doc.Nodes[0].Type != "utility/input" || doc.Nodes[2].Type != "model" {
		t.Fatalf("unexpected serialized types: %q, %q", doc.Nodes[0].Type, doc.Nodes[2].Type)
	}

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gotNodes, gotEdges := decoded.Materialize()
	if !reflect.DeepEqual(gotNodes, nodes) {
		t.Fatalf("nodes round trip mismatch:\n got %+v\nwant %+v", gotNodes[1], nodes[1])
	}
	if !reflect.DeepEqual(gotEdges, edges) {
		t.Fatalf("edges round trip mismatch: %+v", gotEdges)
	}
	if decoded.Viewport != vp {
		t.Fatalf("viewport = %+v, want %+v", decoded.Viewport, vp)
	}
}

func TestMaterializeSubtypeFromType(t *testing.T) {
	// Loaders that only set the type string still get a usable subtype.
	doc := &Document{Nodes: []NodeState{{ID: "l", Type: "primitive/loop"}}}
	nodes, _ := doc.Materialize()
	if nodes[0].Kind != KindPrimitive || nodes[0].Data.Subtype != PrimitiveLoop {
		t.Fatalf("unexpected node: %+v", nodes[0])
	}
	if len(nodes[0].Outputs()) != 3 {
		t.Fatal("derived ports should follow the parsed subtype")
	}
}

func TestDecodeDocumentYAML(t *testing.T) {
	src := `
nodes:
  - id: c
    type: utility/constant
    position: {x: 1, y: 2}
    data:
      label: greeting
      value: hello
  - id: o
    type: utility/output
    position: {x: 5, y: 2}
    data:
      label: result
edges:
  - id: e1
    source: c
    sourceHandle: value
    target: o
    targetHandle: value
viewport: {x: 0, y: 0, zoom: 1}
`
	doc, err := DecodeDocumentYAML([]byte(src))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	nodes, edges := doc.Materialize()
	if len(nodes) != 2 || len(edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(nodes), len(edges))
	}
	if nodes[0].Data.Value != "hello" {
		t.Fatalf("constant value = %v", nodes[0].Data.Value)
	}
	if err := ValidateConnection(edges[0].Connection(), nodes, nil); err != nil {
		t.Fatalf("decoded edge should validate: %v", err)
	}
}
