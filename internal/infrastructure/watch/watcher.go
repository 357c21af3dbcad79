package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent represents a payload file change.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// PayloadWatcher watches a payload directory and fires a callback when a
// payload file changes, so cached analytics are invalidated without
// waiting for the TTL. Rapid bursts of writes collapse into a single
// invocation through the debouncer.
type PayloadWatcher struct {
	watcher  *fsnotify.Watcher
	filter   *PatternFilter
	debounce time.Duration
	onChange func(ChangeEvent)
	logger   *slog.Logger
}

// NewPayloadWatcher creates a watcher over a payload directory. A zero
// debounce defaults to 500ms.
func NewPayloadWatcher(dir string, debounce time.Duration, onChange func(ChangeEvent), logger *slog.Logger) (*PayloadWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayloadWatcher{
		watcher:  w,
		filter:   NewPayloadFilter(),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *PayloadWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" {
				continue
			}
			if !w.filter.Matches(event.Name) {
				continue
			}

			w.logger.Debug("payload file changed", "path", event.Name, "change", changeType)
			debouncer.Trigger(ChangeEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
