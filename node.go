package canvas

import "strings"

// NodeKind is the top-level category of a node.
type NodeKind string

const (
	KindProgram   NodeKind = "program"
	KindModel     NodeKind = "model"
	KindPrimitive NodeKind = "primitive"
	KindUtility   NodeKind = "utility"
)

// Primitive subtypes. The subtype fixes a primitive node's port schema.
const (
	PrimitiveLoop        = "loop"
	PrimitiveConditional = "conditional"
	PrimitiveMerge       = "merge"
	PrimitiveMap         = "map"
	PrimitiveFilter      = "filter"
)

// Utility subtypes.
const (
	UtilityInput    = "input"
	UtilityOutput   = "output"
	UtilityConstant = "constant"
	UtilityDebug    = "debug"
	UtilityNote     = "note"
)

// ExecutionState is the transient per-node status reported by the runtime
// service while a composition runs. It is visualization state only and plays
// no part in validation, scheduling or generation.
type ExecutionState string

const (
	ExecutionPending   ExecutionState = "pending"
	ExecutionRunning   ExecutionState = "running"
	ExecutionSucceeded ExecutionState = "succeeded"
	ExecutionFailed    ExecutionState = "failed"
	ExecutionSkipped   ExecutionState = "skipped"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slot declares one named, typed input or output on a program node.
type Slot struct {
	Name string   `json:"name"`
	Type PortType `json:"type,omitempty"`
}

// NodeData carries the kind-specific payload of a node.
type NodeData struct {
	Label       string `json:"label,omitempty"`
	Subtype     string `json:"subtype,omitempty"`
	Description string `json:"description,omitempty"`
	// Value is the literal payload of a utility/constant node.
	Value any `json:"value,omitempty"`
	// InputSlots and OutputSlots declare the dynamic interface of a
	// program node. Slots without a type default to any.
	InputSlots  []Slot `json:"inputSlots,omitempty"`
	OutputSlots []Slot `json:"outputSlots,omitempty"`
	// ExecutionState is transient and never considered by the algorithms.
	ExecutionState ExecutionState `json:"executionState,omitempty"`
}

// Node is a single processing step on the canvas.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"-"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Type returns the serialized node type, "kind/subtype" or the bare kind
// when the node has no subtype.
func (n *Node) Type() string {
	if n.Data.Subtype == "" {
		return string(n.Kind)
	}
	return string(n.Kind) + "/" + n.Data.Subtype
}

// ParseNodeType splits a serialized node type into kind and subtype.
func ParseNodeType(s string) (NodeKind, string) {
	kind, subtype, _ := strings.Cut(s, "/")
	return NodeKind(kind), subtype
}

// Clone returns a structural copy of the node. Literal values are treated as
// immutable and shared; everything else is copied.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Data.InputSlots = append([]Slot(nil), n.Data.InputSlots...)
	c.Data.OutputSlots = append([]Slot(nil), n.Data.OutputSlots...)
	return &c
}

// Inputs returns the node's input ports, derived from its kind and data.
func (n *Node) Inputs() []Port {
	return n.ports(DirectionInput)
}

// Outputs returns the node's output ports, derived from its kind and data.
func (n *Node) Outputs() []Port {
	return n.ports(DirectionOutput)
}

// portSpec is one entry of the fixed schema table.
type portSpec struct {
	id  string
	typ PortType
}

// Fixed schemas for primitive subtypes. A subtype absent from the table has
// no ports in that direction.
var primitivePorts = map[string]struct{ in, out []portSpec }{
	PrimitiveLoop: {
		in:  []portSpec{{"collection", TypeCollection}},
		out: []portSpec{{"item", TypeAny}, {"index", TypeNumber}, {"done", TypeBoolean}},
	},
	PrimitiveConditional: {
		in:  []portSpec{{"condition", TypeBoolean}, {"value", TypeAny}},
		out: []portSpec{{"true", TypeAny}, {"false", TypeAny}},
	},
	PrimitiveMerge: {
		in:  []portSpec{{"input1", TypeAny}, {"input2", TypeAny}, {"input3", TypeAny}},
		out: []portSpec{{"merged", TypeAny}},
	},
	PrimitiveMap: {
		in:  []portSpec{{"collection", TypeCollection}, {"mapper", TypeFunction}},
		out: []portSpec{{"result", TypeCollection}},
	},
	PrimitiveFilter: {
		in:  []portSpec{{"collection", TypeCollection}, {"predicate", TypePredicate}},
		out: []portSpec{{"filtered", TypeCollection}},
	},
}

var utilityPorts = map[string]struct{ in, out []portSpec }{
	UtilityInput:    {out: []portSpec{{"value", TypeAny}}},
	UtilityOutput:   {in: []portSpec{{"value", TypeAny}}},
	UtilityConstant: {out: []portSpec{{"value", TypeAny}}},
	UtilityDebug: {
		in:  []portSpec{{"value", TypeAny}},
		out: []portSpec{{"value", TypeAny}},
	},
	UtilityNote: {},
}

func (n *Node) ports(d Direction) []Port {
	switch n.Kind {
	case KindProgram:
		slots := n.Data.InputSlots
		if d == DirectionOutput {
			slots = n.Data.OutputSlots
		}
		ports := make([]Port, 0, len(slots))
		for _, s := range slots {
			typ := s.Type
			if typ == "" {
				typ = TypeAny
			}
			ports = append(ports, Port{ID: s.Name, Label: s.Name, Type: typ, Direction: d})
		}
		return ports
	case KindModel:
		if d == DirectionInput {
			return []Port{{ID: "input", Label: "input", Type: TypeAny, Direction: d}}
		}
		return []Port{{ID: "output", Label: "output", Type: TypeAny, Direction: d}}
	case KindPrimitive:
		return buildPorts(primitivePorts[n.Data.Subtype], d)
	case KindUtility:
		return buildPorts(utilityPorts[n.Data.Subtype], d)
	}
	return nil
}

func buildPorts(spec struct{ in, out []portSpec }, d Direction) []Port {
	specs := spec.in
	if d == DirectionOutput {
		specs = spec.out
	}
	ports := make([]Port, 0, len(specs))
	for _, s := range specs {
		ports = append(ports, Port{ID: s.id, Label: s.id, Type: s.typ, Direction: d})
	}
	return ports
}

// Input returns the node's input port with the given id.
func (n *Node) Input(id string) (Port, bool) {
	return findPort(n.Inputs(), id)
}

// Output returns the node's output port with the given id.
func (n *Node) Output(id string) (Port, bool) {
	return findPort(n.Outputs(), id)
}

func findPort(ports []Port, id string) (Port, bool) {
	for _, p := range ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}
