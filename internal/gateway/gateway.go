package gateway

import (
	"time"

	"safisha/internal/core"
	"safisha/internal/store"
)

// Options wires a Gateway. Remote may be nil; Configured is the outcome of
// the configuration check and is ignored when Remote is nil.
type Options struct {
	Remote     store.RowStore
	Fallback   store.RowStore
	Configured bool
	Now        func() time.Time
}

// Gateway bundles the per-entity repositories.
type Gateway struct {
	Sales     *Sales
	Employees *Employees
	Expenses  *Repository[core.Expense]
	Notes     *Repository[core.Note]
	Leads     *Repository[core.Lead]
}

func New(o Options) *Gateway {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	photos, _ := o.Remote.(store.PhotoStore)

	return &Gateway{
		Sales: &Sales{
			Repository: newRepository[core.Sale](store.Sales, o.Remote, o.Fallback, o.Configured),
			now:        now,
		},
		Employees: &Employees{
			Repository: newRepository[core.Employee](store.Employees, o.Remote, o.Fallback, o.Configured),
			photos:     photos,
			now:        now,
		},
		Expenses: newRepository[core.Expense](store.Expenses, o.Remote, o.Fallback, o.Configured),
		Notes:    newRepository[core.Note](store.Notes, o.Remote, o.Fallback, o.Configured),
		Leads:    newRepository[core.Lead](store.Leads, o.Remote, o.Fallback, o.Configured),
	}
}

// RemoteActive reports whether calls are routed to the remote store.
func (g *Gateway) RemoteActive() bool {
	return g.Sales.Remote()
}
