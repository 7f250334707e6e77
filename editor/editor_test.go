package editor

import (
	"context"
	"testing"
	"time"

	"github.com/go-kratos/canvas"
)

func constantNode(id string) *canvas.Node {
	return &canvas.Node{ID: id, Kind: canvas.KindUtility, Data: canvas.NodeData{Subtype: canvas.UtilityConstant}}
}

func outputNode(id string) *canvas.Node {
	return &canvas.Node{ID: id, Kind: canvas.KindUtility, Data: canvas.NodeData{Subtype: canvas.UtilityOutput}}
}

func nodeIDs(nodes []*canvas.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestUndoRedoLinearLaw(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("a"))
	e.AddNode(constantNode("b"))
	e.AddNode(constantNode("c"))

	for i := 0; i < 3; i++ {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i+1)
		}
	}
	if got := e.Nodes(); len(got) != 0 {
		t.Fatalf("after 3 undos expected empty graph, got %v", nodeIDs(got))
	}
	if e.Undo() {
		t.Fatal("undo past the floor must be a no-op")
	}

	if !e.Redo() {
		t.Fatal("redo failed")
	}
	if got := nodeIDs(e.Nodes()); len(got) != 1 || got[0] != "a" {
		t.Fatalf("one redo should reproduce the state after the first mutation, got %v", got)
	}
}

func TestRedoToTheTip(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("a"))
	e.AddNode(constantNode("b"))

	e.Undo()
	e.Undo()
	e.Redo()
	e.Redo()
	if got := nodeIDs(e.Nodes()); len(got) != 2 {
		t.Fatalf("redos should reach the pre-undo state, got %v", got)
	}
	if e.Redo() {
		t.Fatal("redo past the tip must be a no-op")
	}
}

func TestMutationDiscardsRedoTail(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("a"))
	e.AddNode(constantNode("b"))
	e.Undo()
	if !e.CanRedo() {
		t.Fatal("expected a redo entry after undo")
	}

	e.AddNode(constantNode("c"))
	if e.CanRedo() {
		t.Fatal("a new mutation must discard the redo tail")
	}
	if got := nodeIDs(e.Nodes()); len(got) != 2 || got[1] != "c" {
		t.Fatalf("unexpected graph: %v", got)
	}
}

func TestHistoryLimit(t *testing.T) {
	e := New(nil, WithHistoryLimit(2))
	defer e.Close()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		e.AddNode(constantNode(id))
	}
	if !e.Undo() || !e.Undo() {
		t.Fatal("two undos should be available")
	}
	if e.Undo() {
		t.Fatal("history beyond the cap must be gone")
	}
	if got := nodeIDs(e.Nodes()); len(got) != 3 {
		t.Fatalf("expected the graph three mutations in, got %v", got)
	}
}

func TestConnectValidAndInvalid(t *testing.T) {
	e := New(nil, WithValidationErrorTTL(20*time.Millisecond))
	defer e.Close()

	e.AddNode(constantNode("c"))
	e.AddNode(outputNode("o"))

	t.Run("rejection mutates nothing", func(t *testing.T) {
		before := len(e.Edges())
		_, err := e.Connect(canvas.Connection{Source: "c", SourceHandle: "value", Target: "c", TargetHandle: "value"})
		ve, ok := canvas.AsValidationError(err)
		if !ok || ve.Code != canvas.CodeSelfConnection {
			t.Fatalf("expected SELF_CONNECTION, got %v", err)
		}
		if len(e.Edges()) != before {
			t.Fatal("rejected connection must not mutate the graph")
		}
		if e.ValidationError() == nil {
			t.Fatal("transient validation error should be visible")
		}
		deadline := time.Now().Add(time.Second)
		for e.ValidationError() != nil {
			if time.Now().After(deadline) {
				t.Fatal("validation error never cleared")
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("acceptance follows the mutation contract", func(t *testing.T) {
		edge, err := e.Connect(canvas.Connection{Source: "c", SourceHandle: "value", Target: "o", TargetHandle: "value"})
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		if edge.ID == "" {
			t.Fatal("edge id should be assigned")
		}
		if len(e.Edges()) != 1 {
			t.Fatal("edge not added")
		}
		if !e.Undo() {
			t.Fatal("edge creation must be undoable")
		}
		if len(e.Edges()) != 0 {
			t.Fatal("undo should remove the edge")
		}
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		e.Redo()
		_, err := e.Connect(canvas.Connection{Source: "c", SourceHandle: "value", Target: "o", TargetHandle: "value"})
		ve, ok := canvas.AsValidationError(err)
		if !ok || ve.Code != canvas.CodeDuplicateConnection {
			t.Fatalf("expected DUPLICATE_CONNECTION, got %v", err)
		}
	})
}

func TestRemoveNodeCascades(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("c"))
	e.AddNode(outputNode("o"))
	if _, err := e.Connect(canvas.Connection{Source: "c", SourceHandle: "value", Target: "o", TargetHandle: "value"}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := e.RemoveNode("c"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(e.Edges()) != 0 {
		t.Fatal("edges touching a removed node must be removed")
	}
	if !e.Undo() {
		t.Fatal("undo failed")
	}
	if len(e.Nodes()) != 2 || len(e.Edges()) != 1 {
		t.Fatal("undo should restore node and incident edge together")
	}
}

func TestDuplicateNode(t *testing.T) {
	e := New(nil)
	defer e.Close()

	src := constantNode("c")
	src.Position = canvas.Position{X: 100, Y: 50}
	src.Data.Value = "payload"
	src.Data.ExecutionState = canvas.ExecutionSucceeded
	e.AddNode(src)

	dup, err := e.DuplicateNode("c")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == "" || dup.ID == "c" {
		t.Fatalf("duplicate must get a fresh id, got %q", dup.ID)
	}
	if dup.Position.X != 132 || dup.Position.Y != 82 {
		t.Fatalf("duplicate should be offset, got %+v", dup.Position)
	}
	if dup.Data.Value != "payload" {
		t.Fatal("payload should be copied")
	}
	if dup.Data.ExecutionState != "" {
		t.Fatal("transient execution state must not be copied")
	}
	if len(e.Nodes()) != 2 {
		t.Fatal("duplicate not added")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("c"))
	got := e.Nodes()
	got[0].Data.Label = "tampered"
	if e.Nodes()[0].Data.Label == "tampered" {
		t.Fatal("accessors must return isolated snapshots")
	}
}

func TestExecutionStateIsNotStructural(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("c"))
	undosBefore := e.CanUndo()
	if err := e.SetExecutionState("c", canvas.ExecutionRunning); err != nil {
		t.Fatalf("set execution state: %v", err)
	}
	if e.CanUndo() != undosBefore {
		t.Fatal("execution state updates must not push history")
	}
	e.Undo()
	if e.CanUndo() {
		t.Fatal("only the structural mutation should have been recorded")
	}
	e2 := New(nil)
	defer e2.Close()
	if err := e2.SetExecutionState("ghost", canvas.ExecutionRunning); err == nil {
		t.Fatal("expected an error for an unknown node")
	}
}

func TestLoadResetsHistory(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("a"))
	doc := canvas.Snapshot([]*canvas.Node{constantNode("x")}, nil, canvas.Viewport{Zoom: 1})
	e.Load("comp-1", doc)

	if e.CanUndo() {
		t.Fatal("loading must reset history")
	}
	if got := nodeIDs(e.Nodes()); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected graph after load: %v", got)
	}
	if e.ID() != "comp-1" {
		t.Fatalf("id = %q", e.ID())
	}
}

func TestOpenFromStore(t *testing.T) {
	store := NewInMemoryStore()
	doc := canvas.Snapshot([]*canvas.Node{constantNode("x")}, nil, canvas.Viewport{Zoom: 2})
	id, err := store.Create(context.Background(), doc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	e := New(store)
	defer e.Close()
	if err := e.Open(context.Background(), id); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := nodeIDs(e.Nodes()); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected graph: %v", got)
	}
	if e.Viewport().Zoom != 2 {
		t.Fatalf("viewport = %+v", e.Viewport())
	}

	bare := New(nil)
	defer bare.Close()
	if err := bare.Open(context.Background(), id); err != ErrNoStore {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
	missing := New(store)
	defer missing.Close()
	if err := missing.Open(context.Background(), "ghost"); err != ErrCompositionNotFound {
		t.Fatalf("expected ErrCompositionNotFound, got %v", err)
	}
}

func TestSetGraphIsUndoable(t *testing.T) {
	e := New(nil)
	defer e.Close()

	e.AddNode(constantNode("a"))
	e.SetGraph([]*canvas.Node{constantNode("x"), constantNode("y")}, nil)
	if len(e.Nodes()) != 2 {
		t.Fatal("bulk replace failed")
	}
	if !e.Undo() {
		t.Fatal("bulk replace must be undoable")
	}
	if got := nodeIDs(e.Nodes()); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected graph: %v", got)
	}
}
