// Package worker applies queued mirror messages to the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"safisha/internal/amqp"
	"safisha/internal/sheets"
)

// MirrorWorker appends queued entries to the mirror sheet. When the mirror
// can also be listed, entries already present are skipped, so redelivered
// messages do not produce duplicate rows.
type MirrorWorker struct {
	writer sheets.EntryWriter
	lister sheets.EntryLister

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMirrorWorker(writer sheets.EntryWriter) *MirrorWorker {
	w := &MirrorWorker{writer: writer, seen: make(map[string]struct{})}
	if l, ok := writer.(sheets.EntryLister); ok {
		w.lister = l
	}
	return w
}

// HandleEntryMirror processes a single message from AMQP. A returned error
// requeues the message.
func (w *MirrorWorker) HandleEntryMirror(ctx context.Context, msg *amqp.EntryMirrorMessage) error {
	id := msg.Entry.EntryID
	slog.InfoContext(ctx, "Processing mirror message",
		"entry_id", id,
		"queued_at", msg.Timestamp)

	if id != "" {
		dup, err := w.alreadyMirrored(ctx, id)
		if err != nil {
			return fmt.Errorf("check mirror for %s: %w", id, err)
		}
		if dup {
			slog.InfoContext(ctx, "Entry already mirrored, skipping", "entry_id", id)
			return nil
		}
	}

	ref, err := w.writer.AppendEntry(ctx, msg.Entry)
	if err != nil {
		return fmt.Errorf("append entry %s: %w", id, err)
	}

	if id != "" {
		w.mu.Lock()
		w.seen[id] = struct{}{}
		w.mu.Unlock()
	}
	slog.InfoContext(ctx, "Successfully mirrored entry",
		"entry_id", id,
		"row_ref", ref)
	return nil
}

func (w *MirrorWorker) alreadyMirrored(ctx context.Context, id string) (bool, error) {
	w.mu.Lock()
	_, ok := w.seen[id]
	w.mu.Unlock()
	if ok {
		return true, nil
	}
	if w.lister == nil {
		return false, nil
	}
	entries, err := w.lister.ListEntries(ctx)
	if err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range entries {
		if e.EntryID != "" {
			w.seen[e.EntryID] = struct{}{}
		}
	}
	_, ok = w.seen[id]
	return ok, nil
}
