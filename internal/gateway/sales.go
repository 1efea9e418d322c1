package gateway

import (
	"context"
	"time"

	"safisha/internal/core"
	"safisha/internal/store"
)

// Sales adds the transaction-specific operations to the generic repository.
type Sales struct {
	*Repository[core.Sale]
	now func() time.Time
}

// Create fills today's date, the top-level service label and the default
// description before storing the sale.
func (s *Sales) Create(ctx context.Context, sale core.Sale) (core.Sale, error) {
	if sale.Date == "" {
		sale.Date = s.now().Format(core.DateLayout)
	}
	if sale.ServiceType == "" {
		sale.ServiceType = core.ServiceLabel(sale.Category)
	}
	if sale.Description == "" && sale.ServiceType != "" {
		sale.Description = sale.ServiceType + " - " + sale.Employee
	}
	return s.Repository.Create(ctx, sale)
}

// MarkAsReturned flags a carpet as collected by its owner.
func (s *Sales) MarkAsReturned(ctx context.Context, id string) (core.Sale, error) {
	return s.Update(ctx, id, map[string]any{
		"returned":     true,
		"returnedDate": store.Timestamp(s.now()),
	})
}

// GetByDate returns the sales recorded on date (YYYY-MM-DD).
func (s *Sales) GetByDate(ctx context.Context, date string) ([]core.Sale, error) {
	return s.filter(ctx, func(sale core.Sale) bool { return sale.Date == date })
}

// GetByEmployee returns the sales credited to the named employee.
func (s *Sales) GetByEmployee(ctx context.Context, employee string) ([]core.Sale, error) {
	return s.filter(ctx, func(sale core.Sale) bool { return sale.Employee == employee })
}

func (s *Sales) filter(ctx context.Context, keep func(core.Sale) bool) ([]core.Sale, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Sale, 0, len(all))
	for _, sale := range all {
		if keep(sale) {
			out = append(out, sale)
		}
	}
	return out, nil
}
