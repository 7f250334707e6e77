package editor

import (
	"context"
	"time"

	"github.com/go-kratos/canvas"
)

// scheduleAutosaveLocked replaces the pending autosave timer. The timer is
// cancel-and-reschedule, never stacked: only one timer is pending per
// editor, and each editor owns its own handle.
func (e *Editor) scheduleAutosaveLocked() {
	if !e.autosaveEnabled || e.store == nil || e.closed {
		return
	}
	if e.saveTimer != nil {
		e.saveTimer.Stop()
	}
	e.saveTimer = time.AfterFunc(e.saveDelay, e.autosaveTick)
}

// autosaveTick fires on the debounce timer's goroutine. A tick arriving
// while a save is in flight is coalesced into the pending flag rather than
// starting a second save.
func (e *Editor) autosaveTick() {
	e.mu.Lock()
	if e.closed || !e.autosaveEnabled || e.store == nil {
		e.mu.Unlock()
		return
	}
	if e.saving {
		e.pending = true
		e.mu.Unlock()
		return
	}
	if !e.dirty && !e.pending {
		e.mu.Unlock()
		return
	}
	e.saving = true
	e.pending = false
	id := e.id
	doc := e.documentLocked()
	e.mu.Unlock()

	e.persistAndRecord(context.Background(), id, doc)
}

// Save flushes the composition immediately, bypassing the debounce delay.
// When a save is already in flight the request is coalesced into pending
// and nil is returned; the retry happens on the next tick.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.store == nil || e.closed {
		e.mu.Unlock()
		return nil
	}
	if e.saving {
		e.pending = true
		e.mu.Unlock()
		return nil
	}
	if e.saveTimer != nil {
		e.saveTimer.Stop()
		e.saveTimer = nil
	}
	e.saving = true
	e.pending = false
	id := e.id
	doc := e.documentLocked()
	e.mu.Unlock()

	return e.persistAndRecord(ctx, id, doc)
}

// SaveState reports the autosave pipeline's status.
func (e *Editor) SaveState() SaveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SaveState{
		Enabled:   e.autosaveEnabled,
		Saving:    e.saving,
		Dirty:     e.dirty,
		Pending:   e.pending,
		LastSaved: e.lastSaved,
		LastError: e.lastSaveErr,
	}
}

// persistAndRecord runs the store call without holding the editor lock and
// records the outcome. Failure never rolls local state back: the graph is
// local-first and eventually persisted.
func (e *Editor) persistAndRecord(ctx context.Context, id string, doc *canvas.Document) error {
	var err error
	savedID := id
	if id == "" {
		savedID, err = e.store.Create(ctx, doc)
	} else {
		err = e.store.Update(ctx, id, doc)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		e.lastSaveErr = err
		e.pending = true
		e.logger.Warn("composition save failed", "composition", id, "error", err)
		e.scheduleAutosaveLocked()
		return err
	}
	e.id = savedID
	e.lastSaveErr = nil
	e.dirty = false
	e.lastSaved = time.Now()
	e.logger.Debug("composition saved", "composition", savedID)
	if e.pending {
		e.pending = false
		e.scheduleAutosaveLocked()
	}
	return nil
}
