package editor

import "github.com/go-kratos/canvas"

// snapshot is one structural copy of the graph collections. Snapshots are
// cloned explicitly rather than through a generic deep copy so their cost
// stays proportional to the graph size.
type snapshot struct {
	nodes []*canvas.Node
	edges []*canvas.Edge
}

func cloneGraph(nodes []*canvas.Node, edges []*canvas.Edge) snapshot {
	s := snapshot{
		nodes: make([]*canvas.Node, len(nodes)),
		edges: make([]*canvas.Edge, len(edges)),
	}
	for i, n := range nodes {
		s.nodes[i] = n.Clone()
	}
	for i, e := range edges {
		s.edges[i] = e.Clone()
	}
	return s
}

// history is a bounded linear undo/redo stack. Entries hold pre-mutation
// snapshots; outside undo/redo navigation the cursor sits on the last entry
// and the current state is not stored. The first undo of a run appends the
// current state as a redo anchor, which keeps the linear law: k undos after
// k mutations restore the initial state, and one redo then reproduces the
// state after the first mutation.
type history struct {
	entries []snapshot
	cursor  int
	limit   int
}

func newHistory(limit int) *history {
	return &history{cursor: -1, limit: limit}
}

// push records a pre-mutation snapshot. Any redo tail beyond the cursor is
// discarded first, then the stack is trimmed to the most recent limit
// entries.
func (h *history) push(pre snapshot) {
	h.entries = append(h.entries[:h.cursor+1], pre)
	h.cursor = len(h.entries) - 1
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = h.entries[over:]
		h.cursor -= over
	}
}

// undo returns the snapshot to restore, or false at the lower boundary.
// current is the live state, captured as the redo anchor when this is the
// first undo since the last mutation.
func (h *history) undo(current func() snapshot) (snapshot, bool) {
	if h.cursor < 0 {
		return snapshot{}, false
	}
	if h.cursor == len(h.entries)-1 {
		h.entries = append(h.entries, current())
	}
	s := h.entries[h.cursor]
	h.cursor--
	return s, true
}

// redo returns the snapshot immediately ahead of the restored state, or
// false at the upper boundary.
func (h *history) redo() (snapshot, bool) {
	if h.cursor+2 >= len(h.entries) {
		return snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor+1], true
}

func (h *history) canUndo() bool {
	return h.cursor >= 0
}

func (h *history) canRedo() bool {
	return h.cursor+2 < len(h.entries)
}

func (h *history) reset() {
	h.entries = nil
	h.cursor = -1
}
