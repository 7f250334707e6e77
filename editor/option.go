package editor

import (
	"log/slog"
	"time"
)

// Option configures an Editor.
type Option func(*Editor)

// WithHistoryLimit bounds the undo stack to the most recent n entries.
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.history = newHistory(n)
		}
	}
}

// WithAutosaveInterval sets the debounce delay between the last qualifying
// mutation and the autosave write.
func WithAutosaveInterval(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.saveDelay = d
		}
	}
}

// WithAutosaveEnabled toggles the autosave pipeline. Autosave is on by
// default whenever a store is provided.
func WithAutosaveEnabled(enabled bool) Option {
	return func(e *Editor) {
		e.autosaveEnabled = enabled
	}
}

// WithValidationErrorTTL sets how long a rejected connection stays visible
// before the transient error clears itself.
func WithValidationErrorTTL(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.validationTTL = d
		}
	}
}

// WithLogger sets the logger used by the save pipeline.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}
