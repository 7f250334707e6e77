// Package editor owns the canonical, mutable state of one composition: the
// node and edge collections, selection and viewport, a bounded undo/redo
// history, and a debounced, single-flight autosave pipeline. Edge creation
// routes through the connection validator; everything else in the module
// receives read-only snapshots of the graph.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-kratos/canvas"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit     = 50
	defaultAutosaveInterval = 5 * time.Second
	defaultValidationTTL    = 3 * time.Second

	// duplicateOffset keeps a duplicated node from landing exactly on its
	// original.
	duplicateOffset = 32
)

// Metadata is the composition's descriptive header.
type Metadata struct {
	Name        string
	Description string
}

// SaveState reports the autosave pipeline's status.
type SaveState struct {
	Enabled   bool
	Saving    bool
	Dirty     bool
	Pending   bool
	LastSaved time.Time
	LastError error
}

// Editor is the composition state machine. It is safe for concurrent use;
// the autosave timer and the persistence call run off the caller goroutine.
type Editor struct {
	mu        sync.Mutex
	id        string
	nodes     []*canvas.Node
	edges     []*canvas.Edge
	viewport  canvas.Viewport
	selection []string
	metadata  Metadata
	history   *history

	store           Store
	logger          *slog.Logger
	autosaveEnabled bool
	saveDelay       time.Duration
	dirty           bool
	saving          bool
	pending         bool
	lastSaved       time.Time
	lastSaveErr     error
	saveTimer       *time.Timer

	validationTTL   time.Duration
	validationErr   *canvas.ValidationError
	validationTimer *time.Timer

	closed bool
}

// New creates an editor. The store is an explicit optional dependency: pass
// nil to run without persistence, which disables autosave entirely.
func New(store Store, opts ...Option) *Editor {
	e := &Editor{
		store:           store,
		logger:          slog.Default(),
		autosaveEnabled: store != nil,
		saveDelay:       defaultAutosaveInterval,
		validationTTL:   defaultValidationTTL,
		history:         newHistory(defaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.autosaveEnabled = false
	}
	return e
}

// Open fetches a persisted composition from the store and loads it.
func (e *Editor) Open(ctx context.Context, id string) error {
	if e.store == nil {
		return ErrNoStore
	}
	doc, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	e.Load(id, doc)
	return nil
}

// Load replaces the editor's state from a persisted document. History is
// reset: a freshly loaded composition has nothing to undo.
func (e *Editor) Load(id string, doc *canvas.Document) {
	nodes, edges := doc.Materialize()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.id = id
	e.nodes = nodes
	e.edges = edges
	e.viewport = doc.Viewport
	e.selection = nil
	e.history.reset()
	e.dirty = false
	e.pending = false
	e.lastSaveErr = nil
}

// AddNode inserts the node, assigning a fresh id when empty, and returns it.
func (e *Editor) AddNode(n *canvas.Node) *canvas.Node {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.beforeMutateLocked()
	e.nodes = append(e.nodes, n)
	e.afterMutateLocked()
	return n
}

// UpdateNodeData replaces a node's data payload.
func (e *Editor) UpdateNodeData(id string, data canvas.NodeData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.findNodeLocked(id)
	if n == nil {
		return canvas.ErrNodeNotFound
	}
	e.beforeMutateLocked()
	n.Data = data
	e.afterMutateLocked()
	return nil
}

// MoveNode updates a node's canvas position.
func (e *Editor) MoveNode(id string, pos canvas.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.findNodeLocked(id)
	if n == nil {
		return canvas.ErrNodeNotFound
	}
	e.beforeMutateLocked()
	n.Position = pos
	e.afterMutateLocked()
	return nil
}

// RemoveNode deletes a node and every edge touching it.
func (e *Editor) RemoveNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.findNodeLocked(id) == nil {
		return canvas.ErrNodeNotFound
	}
	e.beforeMutateLocked()
	nodes := e.nodes[:0]
	for _, n := range e.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	e.nodes = nodes
	edges := e.edges[:0]
	for _, edge := range e.edges {
		if edge.Source != id && edge.Target != id {
			edges = append(edges, edge)
		}
	}
	e.edges = edges
	selection := e.selection[:0]
	for _, sel := range e.selection {
		if sel != id {
			selection = append(selection, sel)
		}
	}
	e.selection = selection
	e.afterMutateLocked()
	return nil
}

// DuplicateNode copies a node under a fresh id, offset on the canvas, with
// transient execution state cleared.
func (e *Editor) DuplicateNode(id string) (*canvas.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	src := e.findNodeLocked(id)
	if src == nil {
		return nil, canvas.ErrNodeNotFound
	}
	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.Position.X += duplicateOffset
	dup.Position.Y += duplicateOffset
	dup.Data.ExecutionState = ""
	e.beforeMutateLocked()
	e.nodes = append(e.nodes, dup)
	e.afterMutateLocked()
	return dup, nil
}

// Connect validates the candidate and, when it passes, adds the edge. On
// rejection the composition is untouched and the validation error is held
// transiently until its TTL expires.
func (e *Editor) Connect(c canvas.Connection) (*canvas.Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := canvas.ValidateConnection(c, e.nodes, e.edges); err != nil {
		if ve, ok := canvas.AsValidationError(err); ok {
			e.setValidationErrorLocked(ve)
		}
		return nil, err
	}
	edge := &canvas.Edge{
		ID:           uuid.NewString(),
		Source:       c.Source,
		SourceHandle: c.SourceHandle,
		Target:       c.Target,
		TargetHandle: c.TargetHandle,
	}
	e.beforeMutateLocked()
	e.edges = append(e.edges, edge)
	e.afterMutateLocked()
	return edge.Clone(), nil
}

// RemoveEdge deletes an edge by id.
func (e *Editor) RemoveEdge(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, edge := range e.edges {
		if edge.ID == id {
			e.beforeMutateLocked()
			e.edges = append(e.edges[:i], e.edges[i+1:]...)
			e.afterMutateLocked()
			return nil
		}
	}
	return canvas.ErrEdgeNotFound
}

// SetGraph bulk-replaces both collections, following the normal mutation
// contract: the previous graph remains reachable through undo.
func (e *Editor) SetGraph(nodes []*canvas.Node, edges []*canvas.Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.beforeMutateLocked()
	e.nodes = nodes
	e.edges = edges
	e.afterMutateLocked()
}

// SetViewport updates the pan/zoom state. Viewport changes persist but are
// not undoable.
func (e *Editor) SetViewport(vp canvas.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = vp
	e.dirty = true
	e.scheduleAutosaveLocked()
}

// SetMetadata updates the composition's name and description.
func (e *Editor) SetMetadata(m Metadata) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metadata = m
	e.dirty = true
	e.scheduleAutosaveLocked()
}

// Select replaces the current selection. Selection is ephemeral: neither
// history nor autosave is touched.
func (e *Editor) Select(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = append([]string(nil), ids...)
}

// Selection returns the selected node ids.
func (e *Editor) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selection...)
}

// SetExecutionState updates a node's transient run status. Execution state
// is visualization only: no history entry, no dirty mark.
func (e *Editor) SetExecutionState(nodeID string, state canvas.ExecutionState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.findNodeLocked(nodeID)
	if n == nil {
		return canvas.ErrNodeNotFound
	}
	n.Data.ExecutionState = state
	return nil
}

// ClearExecutionState resets every node's transient run status.
func (e *Editor) ClearExecutionState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.nodes {
		n.Data.ExecutionState = ""
	}
}

// Undo restores the most recent history entry. It reports false at the
// lower boundary.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.history.undo(func() snapshot {
		return cloneGraph(e.nodes, e.edges)
	})
	if !ok {
		return false
	}
	e.restoreLocked(s)
	return true
}

// Redo re-applies the entry immediately ahead of the cursor. It reports
// false at the upper boundary.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.history.redo()
	if !ok {
		return false
	}
	e.restoreLocked(s)
	return true
}

// CanUndo reports whether an undo entry is available.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.canUndo()
}

// CanRedo reports whether a redo entry is available.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.canRedo()
}

// Nodes returns a snapshot of the node collection.
func (e *Editor) Nodes() []*canvas.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneGraph(e.nodes, nil).nodes
}

// Edges returns a snapshot of the edge collection.
func (e *Editor) Edges() []*canvas.Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneGraph(nil, e.edges).edges
}

// Viewport returns the current pan/zoom state.
func (e *Editor) Viewport() canvas.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// Metadata returns the composition's descriptive header.
func (e *Editor) Metadata() Metadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metadata
}

// ID returns the persisted composition id, empty before the first save.
func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// Document serializes the current graph into the persisted composition
// format.
func (e *Editor) Document() *canvas.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentLocked()
}

// ValidationError returns the transient error from the last rejected
// connection, or nil once it has cleared.
func (e *Editor) ValidationError() *canvas.ValidationError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validationErr
}

// Close cancels pending timers. The editor must not be used afterwards; a
// torn-down collaborator is never saved into.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
	if e.validationTimer != nil {
		e.validationTimer.Stop()
		e.validationTimer = nil
	}
}

func (e *Editor) documentLocked() *canvas.Document {
	return canvas.Snapshot(e.nodes, e.edges, e.viewport)
}

func (e *Editor) findNodeLocked(id string) *canvas.Node {
	for _, n := range e.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// beforeMutateLocked captures the pre-mutation snapshot, so undo always
// restores a state strictly prior to the mutation that triggered the push.
func (e *Editor) beforeMutateLocked() {
	e.history.push(cloneGraph(e.nodes, e.edges))
}

func (e *Editor) afterMutateLocked() {
	e.dirty = true
	e.scheduleAutosaveLocked()
}

func (e *Editor) restoreLocked(s snapshot) {
	e.nodes = s.nodes
	e.edges = s.edges
	e.selection = nil
	e.dirty = true
	e.scheduleAutosaveLocked()
}

func (e *Editor) setValidationErrorLocked(ve *canvas.ValidationError) {
	e.validationErr = ve
	if e.validationTimer != nil {
		e.validationTimer.Stop()
	}
	if e.closed {
		return
	}
	e.validationTimer = time.AfterFunc(e.validationTTL, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.validationErr == ve {
			e.validationErr = nil
		}
	})
}
