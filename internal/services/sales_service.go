package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"safisha/internal/analytics"
	"safisha/internal/cache"
	"safisha/internal/core"
	"safisha/internal/gateway"
	applog "safisha/internal/log"
	"safisha/internal/sheets"
)

const mirrorWriteTimeout = 30 * time.Second

// MirrorPublisher queues a sheet entry for the mirror worker.
type MirrorPublisher interface {
	PublishEntryMirror(ctx context.Context, e sheets.Entry) error
}

// SalesOptions holds the optional collaborators of SalesService. Any of
// them may be nil.
type SalesOptions struct {
	Mirror    sheets.EntryWriter
	Publisher MirrorPublisher
	Summaries cache.Cache[analytics.Summary]
	Logger    *applog.Logger
}

// SalesService records sales through the gateway and keeps the derived
// views (dashboard summaries, spreadsheet mirror) in step.
type SalesService struct {
	sales     *gateway.Sales
	mirror    sheets.EntryWriter
	publisher MirrorPublisher
	summaries cache.Cache[analytics.Summary]
	logger    *applog.Logger
	events    *applog.StructuredLogger

	wg sync.WaitGroup
}

func NewSalesService(sales *gateway.Sales, o SalesOptions) *SalesService {
	logger := o.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SalesService{
		sales:     sales,
		mirror:    o.Mirror,
		publisher: o.Publisher,
		summaries: o.Summaries,
		logger:    logger.WithComponent(applog.ComponentSales),
		events:    applog.NewStructuredLogger(logger),
	}
}

// Create stores the sale and then mirrors it. Mirroring never fails the
// call: the sale is already saved.
func (s *SalesService) Create(ctx context.Context, sale core.Sale) (core.Sale, error) {
	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return core.Sale{}, err
	}
	s.invalidate()
	s.events.LogSaleCreated(ctx, created.ID, string(created.Category), created.Employee, created.Amount.Cents())
	s.dispatchMirror(ctx, created)
	return created, nil
}

func (s *SalesService) Update(ctx context.Context, id string, fields map[string]any) (core.Sale, error) {
	updated, err := s.sales.Update(ctx, id, fields)
	if err != nil {
		return core.Sale{}, err
	}
	s.invalidate()
	return updated, nil
}

func (s *SalesService) Delete(ctx context.Context, id string) error {
	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *SalesService) MarkAsReturned(ctx context.Context, id string) (core.Sale, error) {
	updated, err := s.sales.MarkAsReturned(ctx, id)
	if err != nil {
		return core.Sale{}, err
	}
	s.invalidate()
	return updated, nil
}

// List returns the sales on date for employee; empty arguments and the
// employee "all" do not filter.
func (s *SalesService) List(ctx context.Context, date, employee string) ([]core.Sale, error) {
	all, err := s.sales.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	anyEmployee := employee == "" || strings.EqualFold(employee, "all")
	out := make([]core.Sale, 0, len(all))
	for _, sale := range all {
		if date != "" && sale.Date != date {
			continue
		}
		if !anyEmployee && sale.Employee != employee {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

// Summary aggregates the sales selected by q. Results are cached until the
// next write through this service or the cache TTL, whichever comes first.
// A summary built from the local copy after a remote read failure is not
// cached.
func (s *SalesService) Summary(ctx context.Context, q analytics.Query) (analytics.Summary, error) {
	key := summaryKey(q)
	if s.summaries != nil {
		if sum, ok := s.summaries.Get(key); ok {
			return sum, nil
		}
	}
	all, src, err := s.sales.GetAllWithSource(ctx)
	if err != nil {
		return analytics.Summary{}, err
	}
	sum, err := analytics.Summarize(all, q)
	if err != nil {
		return analytics.Summary{}, err
	}
	if s.summaries != nil && src == gateway.SourcePrimary {
		s.summaries.Set(key, sum)
	}
	return sum, nil
}

// Wait blocks until background mirror writes have finished.
func (s *SalesService) Wait() {
	s.wg.Wait()
}

func (s *SalesService) invalidate() {
	if s.summaries != nil {
		s.summaries.Purge()
	}
}

func (s *SalesService) dispatchMirror(ctx context.Context, sale core.Sale) {
	entry := sheets.EntryFromSale(sale)

	if s.publisher != nil {
		err := s.publisher.PublishEntryMirror(ctx, entry)
		if err == nil {
			return
		}
		s.logger.WarnContext(ctx, "Failed to queue mirror entry",
			applog.FieldRecordID, sale.ID,
			applog.FieldError, err.Error())
	}
	if s.mirror == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorWriteTimeout)
		defer cancel()

		ref, err := s.mirror.AppendEntry(ctx, entry)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to mirror sale",
				applog.FieldRecordID, sale.ID,
				applog.FieldOperation, applog.OpAppend,
				applog.FieldError, err.Error())
			return
		}
		s.logger.DebugContext(ctx, "Mirrored sale",
			applog.FieldRecordID, sale.ID,
			applog.FieldMirrorRef, ref)
	}()
}

func summaryKey(q analytics.Query) string {
	return fmt.Sprintf("%s|%s|%s", q.Date, q.Period, q.Employee)
}
