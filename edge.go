package canvas

// Default handles used when an edge endpoint omits a port id.
const (
	DefaultSourceHandle = "output"
	DefaultTargetHandle = "input"
)

// Edge is a directed connection from an output port to an input port.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Connection is a candidate edge prior to validation.
type Connection struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

// Clone returns a copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Connection returns the edge's endpoint tuple with defaults resolved.
func (e *Edge) Connection() Connection {
	return Connection{
		Source:       e.Source,
		SourceHandle: e.SourceHandle,
		Target:       e.Target,
		TargetHandle: e.TargetHandle,
	}.normalize()
}

// normalize fills in the default handles for omitted port ids.
func (c Connection) normalize() Connection {
	if c.SourceHandle == "" {
		c.SourceHandle = DefaultSourceHandle
	}
	if c.TargetHandle == "" {
		c.TargetHandle = DefaultTargetHandle
	}
	return c
}
