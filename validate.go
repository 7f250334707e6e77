package canvas

// ValidateConnection checks a candidate edge against the composition and
// returns nil when the connection may be made, or a *ValidationError
// describing the first failing check. Checks run in a fixed order and
// short-circuit, so the reported code is deterministic for a given graph.
// Validation is pure: neither the candidate nor the graph is mutated.
func ValidateConnection(c Connection, nodes []*Node, edges []*Edge) error {
	c = c.normalize()

	if c.Source == c.Target {
		return validationErrorf(CodeSelfConnection, "cannot connect node %q to itself", c.Source)
	}

	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	source, ok := byID[c.Source]
	if !ok {
		return validationErrorf(CodeMissingSourceNode, "source node %q does not exist", c.Source)
	}
	target, ok := byID[c.Target]
	if !ok {
		return validationErrorf(CodeMissingTargetNode, "target node %q does not exist", c.Target)
	}

	outputs := source.Outputs()
	inputs := target.Inputs()
	if len(outputs) == 0 {
		return validationErrorf(CodeNoHandles, "node %q has no output ports", c.Source)
	}
	if len(inputs) == 0 {
		return validationErrorf(CodeNoHandles, "node %q has no input ports", c.Target)
	}

	sourcePort, ok := findPort(outputs, c.SourceHandle)
	if !ok {
		return validationErrorf(CodeMissingSourceHandle, "node %q has no output port %q", c.Source, c.SourceHandle)
	}
	targetPort, ok := findPort(inputs, c.TargetHandle)
	if !ok {
		return validationErrorf(CodeMissingTargetHandle, "node %q has no input port %q", c.Target, c.TargetHandle)
	}

	for _, e := range edges {
		if e.Connection() == c {
			return validationErrorf(CodeDuplicateConnection, "connection %s.%s -> %s.%s already exists",
				c.Source, c.SourceHandle, c.Target, c.TargetHandle)
		}
	}

	if !Compatible(sourcePort.Type, targetPort.Type) {
		return validationErrorf(CodeTypeMismatch, "cannot connect %s output to %s input",
			sourcePort.Type, targetPort.Type)
	}
	return nil
}

// PortRef identifies one port on one node.
type PortRef struct {
	NodeID string
	PortID string
}

// ValidTargets computes every port on other nodes that would form a valid
// edge with the dragged port. When the drag starts on an output port the
// dragged port is tried as source against every other node's inputs; when it
// starts on an input port it is tried as target against every other node's
// outputs. The set is computed once per drag start, not per pointer frame.
func ValidTargets(nodeID, portID string, dir Direction, nodes []*Node, edges []*Edge) []PortRef {
	var refs []PortRef
	for _, other := range nodes {
		if other.ID == nodeID {
			continue
		}
		if dir == DirectionOutput {
			for _, p := range other.Inputs() {
				c := Connection{Source: nodeID, SourceHandle: portID, Target: other.ID, TargetHandle: p.ID}
				if ValidateConnection(c, nodes, edges) == nil {
					refs = append(refs, PortRef{NodeID: other.ID, PortID: p.ID})
				}
			}
			continue
		}
		for _, p := range other.Outputs() {
			c := Connection{Source: other.ID, SourceHandle: p.ID, Target: nodeID, TargetHandle: portID}
			if ValidateConnection(c, nodes, edges) == nil {
				refs = append(refs, PortRef{NodeID: other.ID, PortID: p.ID})
			}
		}
	}
	return refs
}
