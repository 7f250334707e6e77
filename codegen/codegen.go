// Package codegen lowers an ordered composition into Python source text
// together with the derived input/output signature of the generated unit.
// Generation never fails: structural problems degrade to warnings and
// documented fallback expressions.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-kratos/canvas"
)

// InputSpec describes one declared input of the generated unit.
type InputSpec struct {
	Name        string          `json:"name"`
	Type        canvas.PortType `json:"type"`
	Required    bool            `json:"required"`
	Description string          `json:"description,omitempty"`
}

// OutputSpec describes one declared output of the generated unit.
type OutputSpec struct {
	Name        string          `json:"name"`
	Type        canvas.PortType `json:"type"`
	Description string          `json:"description,omitempty"`
}

// Result is the outcome of lowering a composition. Code is opaque text in
// the runtime's scripting syntax; callers must not re-parse it.
type Result struct {
	Code           string       `json:"code"`
	ExecutionOrder []string     `json:"executionOrder"`
	Inputs         []InputSpec  `json:"inputs"`
	Outputs        []OutputSpec `json:"outputs"`
	Warnings       []string     `json:"warnings"`
}

// Generate lowers the composition into a Python function whose parameters
// and return value mirror the utility/input and utility/output nodes. The
// emitted body calls the runtime primitives run_program and run_model, which
// the production runtime provides.
func Generate(nodes []*canvas.Node, edges []*canvas.Edge) *Result {
	return newGenerator(nodes, edges).generate(false)
}

// GenerateStandalone wraps the identical body in a self-contained header
// that defines local stubs for run_program and run_model, so the emitted
// text is runnable without the production runtime. Used for export.
func GenerateStandalone(nodes []*canvas.Node, edges []*canvas.Edge) *Result {
	return newGenerator(nodes, edges).generate(true)
}

type returnValue struct {
	name string
	expr string
}

type generator struct {
	nodes    map[string]*canvas.Node
	plan     *canvas.Plan
	incoming map[string]map[string]*canvas.Edge
	idents   *identTable
	paramFor map[string]string

	buf      strings.Builder
	indent   int
	warnings []string
	inputs   []InputSpec
	outputs  []OutputSpec
	returns  []returnValue
	params   []string
}

func newGenerator(nodes []*canvas.Node, edges []*canvas.Edge) *generator {
	g := &generator{
		nodes:    make(map[string]*canvas.Node, len(nodes)),
		incoming: make(map[string]map[string]*canvas.Edge),
		idents:   newIdentTable(),
		paramFor: make(map[string]string),
		warnings: []string{},
		inputs:   []InputSpec{},
		outputs:  []OutputSpec{},
	}
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	g.plan = canvas.Schedule(nodes, edges)

	// Reverse adjacency keyed by target handle, so emission can resolve
	// "what feeds handle X". The first edge per handle wins.
	for _, e := range edges {
		if g.nodes[e.Source] == nil || g.nodes[e.Target] == nil {
			continue
		}
		c := e.Connection()
		if g.incoming[c.Target] == nil {
			g.incoming[c.Target] = make(map[string]*canvas.Edge)
		}
		if g.incoming[c.Target][c.TargetHandle] == nil {
			g.incoming[c.Target][c.TargetHandle] = e
		}
	}

	// Declared inputs claim their parameter names before node bindings so a
	// parameter is never renamed by an identifier collision with a node.
	for _, id := range g.plan.Order {
		n := g.nodes[id]
		if n == nil || !isUtility(n, canvas.UtilityInput) {
			continue
		}
		raw := n.Data.Label
		if raw == "" {
			raw = n.ID
		}
		param := g.idents.assign("param:"+n.ID, raw)
		g.paramFor[n.ID] = param
		g.params = append(g.params, param)
		g.inputs = append(g.inputs, InputSpec{
			Name:        param,
			Type:        g.inferInputType(n, edges),
			Required:    true,
			Description: n.Data.Description,
		})
	}
	for _, id := range g.plan.Order {
		if n := g.nodes[id]; n != nil {
			g.idents.assign("node:"+n.ID, n.ID)
		}
	}
	return g
}

// inferInputType reports the type an input node's value flows into, or any
// when the node feeds nothing (or several differently-typed ports).
func (g *generator) inferInputType(n *canvas.Node, edges []*canvas.Edge) canvas.PortType {
	inferred := canvas.TypeAny
	for _, e := range edges {
		if e.Source != n.ID {
			continue
		}
		target := g.nodes[e.Target]
		if target == nil {
			continue
		}
		port, ok := target.Input(e.Connection().TargetHandle)
		if !ok || port.Type == canvas.TypeAny {
			continue
		}
		if inferred != canvas.TypeAny && inferred != port.Type {
			return canvas.TypeAny
		}
		inferred = port.Type
	}
	return inferred
}

func (g *generator) generate(standalone bool) *Result {
	if standalone {
		g.emitStubs()
	}
	g.linef("# Code generated by canvas. DO NOT EDIT.")
	g.linef("def run(%s):", strings.Join(g.params, ", "))
	g.indent++

	for _, id := range g.plan.Order {
		n := g.nodes[id]
		if n == nil {
			g.warnf("scheduled node %q is missing from the composition", id)
			continue
		}
		g.emitNode(n)
	}
	g.emitReturn()
	g.indent--

	if standalone {
		g.emitMain()
	}
	if g.plan.HasCycle {
		g.warnf("composition contains a cycle; %d node(s) were not scheduled",
			len(g.nodes)-len(g.plan.Order))
	}
	return &Result{
		Code:           g.buf.String(),
		ExecutionOrder: g.plan.Order,
		Inputs:         g.inputs,
		Outputs:        g.outputs,
		Warnings:       g.warnings,
	}
}

func (g *generator) emitNode(n *canvas.Node) {
	ident, _ := g.idents.lookup("node:" + n.ID)
	switch n.Kind {
	case canvas.KindUtility:
		g.emitUtility(n, ident)
	case canvas.KindProgram:
		g.emitProgram(n, ident)
	case canvas.KindModel:
		expr := g.inputExpr(n.ID, "input", "None")
		g.linef("%s = run_model(%s, %s)", ident, pyString(nodeName(n)), expr)
	case canvas.KindPrimitive:
		g.emitPrimitive(n, ident)
	default:
		g.warnf("node %q has unrecognized kind %q", n.ID, n.Kind)
		g.linef("# skipped node %s: unrecognized kind %q", n.ID, n.Kind)
	}
}

func (g *generator) emitUtility(n *canvas.Node, ident string) {
	switch n.Data.Subtype {
	case canvas.UtilityInput:
		g.linef("%s = %s", ident, g.paramFor[n.ID])
	case canvas.UtilityOutput:
		expr := g.inputExpr(n.ID, "value", "None")
		g.linef("%s = %s", ident, expr)
		name := n.Data.Label
		if name == "" {
			name = ident
		}
		g.returns = append(g.returns, returnValue{name: name, expr: ident})
		g.outputs = append(g.outputs, OutputSpec{
			Name:        name,
			Type:        g.inferOutputType(n),
			Description: n.Data.Description,
		})
	case canvas.UtilityConstant:
		g.linef("%s = %s", ident, pyLiteral(n.Data.Value))
	case canvas.UtilityDebug:
		expr := g.inputExpr(n.ID, "value", "None")
		g.linef("%s = %s", ident, expr)
		g.linef("print(%s, %s)", pyString("[debug] "+nodeName(n)), ident)
	case canvas.UtilityNote:
		text := n.Data.Label
		if text == "" {
			text = n.Data.Description
		}
		g.linef("# note: %s", strings.ReplaceAll(text, "\n", " "))
	default:
		g.warnf("node %q has unrecognized utility subtype %q", n.ID, n.Data.Subtype)
		g.linef("%s = None", ident)
	}
}

// inferOutputType reports the type feeding an output node, or any when the
// node is unconnected.
func (g *generator) inferOutputType(n *canvas.Node) canvas.PortType {
	e := g.incomingEdge(n.ID, "value")
	if e == nil {
		return canvas.TypeAny
	}
	source := g.nodes[e.Source]
	if source == nil {
		return canvas.TypeAny
	}
	if port, ok := source.Output(e.Connection().SourceHandle); ok {
		return port.Type
	}
	return canvas.TypeAny
}

func (g *generator) emitProgram(n *canvas.Node, ident string) {
	args := []string{pyString(nodeName(n))}
	for _, p := range n.Inputs() {
		if e := g.incomingEdge(n.ID, p.ID); e != nil {
			c := e.Connection()
			args = append(args, fmt.Sprintf("%s=%s", sanitizeIdentifier(p.ID), g.binding(c.Source, c.SourceHandle)))
		}
	}
	g.linef("%s = run_program(%s)", ident, strings.Join(args, ", "))
	// A program with several declared outputs is unpacked per slot so
	// downstream edges can reference a specific handle.
	if outs := n.Outputs(); len(outs) > 1 {
		for _, p := range outs {
			g.linef("%s_%s = %s[%s]", ident, sanitizeIdentifier(p.ID), ident, pyString(p.ID))
		}
	}
}

func (g *generator) emitPrimitive(n *canvas.Node, ident string) {
	switch n.Data.Subtype {
	case canvas.PrimitiveLoop:
		coll := g.inputExpr(n.ID, "collection", "[]")
		g.linef("%s_item = None", ident)
		g.linef("%s_index = -1", ident)
		g.linef("for %s_index, %s_item in enumerate(%s):", ident, ident, coll)
		g.indent++
		g.linef("pass")
		g.indent--
		g.linef("%s_done = True", ident)
	case canvas.PrimitiveConditional:
		cond := g.inputExpr(n.ID, "condition", "None")
		value := g.inputExpr(n.ID, "value", "None")
		g.linef("%s_true = %s if %s else None", ident, value, cond)
		g.linef("%s_false = None if %s else %s", ident, cond, value)
	case canvas.PrimitiveMerge:
		var parts []string
		for _, handle := range []string{"input1", "input2", "input3"} {
			if e := g.incomingEdge(n.ID, handle); e != nil {
				c := e.Connection()
				parts = append(parts, g.binding(c.Source, c.SourceHandle))
			}
		}
		g.linef("%s = [%s]", ident, strings.Join(parts, ", "))
	case canvas.PrimitiveMap:
		coll := g.inputExpr(n.ID, "collection", "[]")
		mapper := g.inputExpr(n.ID, "mapper", "(lambda x: x)")
		g.linef("%s = [%s(x) for x in %s]", ident, mapper, coll)
	case canvas.PrimitiveFilter:
		coll := g.inputExpr(n.ID, "collection", "[]")
		predicate := g.inputExpr(n.ID, "predicate", "(lambda x: True)")
		g.linef("%s = [x for x in %s if %s(x)]", ident, coll, predicate)
	default:
		g.warnf("node %q has unrecognized primitive subtype %q", n.ID, n.Data.Subtype)
		g.linef("%s = None", ident)
	}
}

func (g *generator) emitReturn() {
	switch len(g.returns) {
	case 0:
		g.linef("return None")
	case 1:
		g.linef("return %s", g.returns[0].expr)
	default:
		entries := make([]string, 0, len(g.returns))
		for _, r := range g.returns {
			entries = append(entries, fmt.Sprintf("%s: %s", pyString(r.name), r.expr))
		}
		g.linef("return {%s}", strings.Join(entries, ", "))
	}
}

func (g *generator) emitStubs() {
	g.linef("def run_program(name, **kwargs):")
	g.indent++
	g.linef("print(%s, name)", pyString("[stub] run_program:"))
	g.linef("return kwargs")
	g.indent--
	g.blank()
	g.blank()
	g.linef("def run_model(name, value):")
	g.indent++
	g.linef("print(%s, name)", pyString("[stub] run_model:"))
	g.linef("return value")
	g.indent--
	g.blank()
	g.blank()
}

func (g *generator) emitMain() {
	args := make([]string, len(g.params))
	for i := range args {
		args[i] = "None"
	}
	g.blank()
	g.blank()
	g.linef("if __name__ == %s:", pyString("__main__"))
	g.indent++
	g.linef("print(run(%s))", strings.Join(args, ", "))
	g.indent--
}

// incomingEdge returns the edge feeding the given input handle, if any.
func (g *generator) incomingEdge(nodeID, handle string) *canvas.Edge {
	return g.incoming[nodeID][handle]
}

// inputExpr resolves the expression feeding an input handle, or the
// documented fallback when the handle is unconnected.
func (g *generator) inputExpr(nodeID, handle, fallback string) string {
	e := g.incomingEdge(nodeID, handle)
	if e == nil {
		return fallback
	}
	c := e.Connection()
	return g.binding(c.Source, c.SourceHandle)
}

// binding names the variable holding a node's computed output. Nodes with a
// single output port bind their bare identifier; multi-output nodes bind one
// suffixed variable per handle.
func (g *generator) binding(nodeID, handle string) string {
	ident, ok := g.idents.lookup("node:" + nodeID)
	if !ok {
		ident = g.idents.assign("node:"+nodeID, nodeID)
	}
	n := g.nodes[nodeID]
	if n == nil {
		return ident
	}
	if len(n.Outputs()) > 1 {
		return ident + "_" + sanitizeIdentifier(handle)
	}
	return ident
}

func (g *generator) linef(format string, args ...any) {
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("    ")
	}
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *generator) blank() {
	g.buf.WriteByte('\n')
}

func (g *generator) warnf(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}

func isUtility(n *canvas.Node, subtype string) bool {
	return n.Kind == canvas.KindUtility && n.Data.Subtype == subtype
}

// nodeName is the name a node is invoked or reported by: its label when set,
// otherwise its id.
func nodeName(n *canvas.Node) string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	return n.ID
}

// pyString renders s as a Python string literal. Go's quoting escapes are a
// subset Python accepts.
func pyString(s string) string {
	return strconv.Quote(s)
}

// pyLiteral serializes a constant value: strings are quoted, nil becomes
// None, booleans map to True/False, everything else uses its plain
// representation.
func pyLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return pyString(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", v)
	}
}
