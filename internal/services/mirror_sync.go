package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"safisha/internal/core"
	applog "safisha/internal/log"
	"safisha/internal/sheets"
)

// SaleLister is the read side of the sales repository.
type SaleLister interface {
	GetAll(ctx context.Context) ([]core.Sale, error)
}

// SyncResult reports one mirror sync pass.
type SyncResult struct {
	Uploaded int `json:"uploaded"`
	Total    int `json:"total"`
	Skipped  int `json:"skipped"`
}

// MirrorSync uploads every sale whose id is not yet in the mirror sheet.
type MirrorSync struct {
	sales       SaleLister
	mirror      sheets.Mirror
	concurrency int
	logger      *applog.Logger
}

func NewMirrorSync(sales SaleLister, mirror sheets.Mirror, concurrency int, logger *applog.Logger) *MirrorSync {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &MirrorSync{
		sales:       sales,
		mirror:      mirror,
		concurrency: concurrency,
		logger:      logger.WithComponent(applog.ComponentMirror),
	}
}

// Run performs one pass. Sales without an id cannot be matched against the
// mirror and are skipped. The first upload failure stops the pass; rows
// already uploaded stay uploaded.
func (m *MirrorSync) Run(ctx context.Context) (SyncResult, error) {
	sales, err := m.sales.GetAll(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list sales: %w", err)
	}
	entries, err := m.mirror.ListEntries(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list mirror entries: %w", err)
	}

	mirrored := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.EntryID != "" {
			mirrored[e.EntryID] = struct{}{}
		}
	}

	res := SyncResult{Total: len(sales)}
	var missing []core.Sale
	for _, s := range sales {
		if s.ID == "" {
			res.Skipped++
			continue
		}
		if _, ok := mirrored[s.ID]; ok {
			continue
		}
		missing = append(missing, s)
	}

	var uploaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, s := range missing {
		g.Go(func() error {
			if _, err := m.mirror.AppendEntry(gctx, sheets.EntryFromSale(s)); err != nil {
				return fmt.Errorf("upload sale %s: %w", s.ID, err)
			}
			uploaded.Add(1)
			return nil
		})
	}
	err = g.Wait()
	res.Uploaded = int(uploaded.Load())

	m.logger.InfoContext(ctx, "Mirror sync finished",
		applog.FieldOperation, applog.OpSync,
		"uploaded", res.Uploaded,
		"missing", len(missing),
		"total", res.Total)

	return res, err
}
