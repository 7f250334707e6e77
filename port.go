package canvas

// PortType classifies the value a port produces or accepts.
type PortType string

const (
	TypeAny        PortType = "any"
	TypeString     PortType = "string"
	TypeNumber     PortType = "number"
	TypeBoolean    PortType = "boolean"
	TypeObject     PortType = "object"
	TypeArray      PortType = "array"
	TypeCollection PortType = "collection"
	TypeFunction   PortType = "function"
	TypePredicate  PortType = "predicate"
)

// Direction indicates whether a port accepts or produces values.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Port is a typed, named connection point on a node. Port lists are derived
// from a node's kind and data, never stored.
type Port struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      PortType  `json:"type"`
	Direction Direction `json:"direction"`
}

// Compatible reports whether a value produced by a source port of type s may
// flow into a target port of type t. The relation is evaluated pairwise per
// candidate edge; it carries no transitivity guarantee.
func Compatible(s, t PortType) bool {
	switch {
	case s == TypeAny || t == TypeAny:
		return true
	case s == t:
		return true
	case s == TypeCollection && t == TypeArray,
		s == TypeArray && t == TypeCollection:
		return true
	case s == TypeFunction && t == TypePredicate:
		// Not symmetric: a predicate source does not satisfy a function target.
		return true
	}
	return false
}
