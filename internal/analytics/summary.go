package analytics

import (
	"strings"

	"safisha/internal/core"
)

// RecentLimit caps the recent-transactions list.
const RecentLimit = 10

// Unspecified is the service-type bucket for sales without one.
const Unspecified = "Unspecified"

// Query selects the sales to summarise. An empty Period means an exact
// match on Date; Employee "" or "all" keeps every employee.
type Query struct {
	Date     string `json:"date"`
	Period   Period `json:"period,omitempty"`
	Employee string `json:"employee,omitempty"`
}

// CategoryTotals aggregates one category.
type CategoryTotals struct {
	Count    int64          `json:"count"`
	Revenue  core.Money     `json:"revenue"`
	Services map[string]int `json:"services"`
}

type Summary struct {
	Query         Query                             `json:"query"`
	From          string                            `json:"from"`
	To            string                            `json:"to"`
	Categories    map[core.Category]*CategoryTotals `json:"categories"`
	TotalServices int                               `json:"totalServices"`
	TotalRevenue  core.Money                        `json:"totalRevenue"`
	Recent        []core.Sale                       `json:"recent"`
	HasMore       bool                              `json:"hasMore"`
	More          int                               `json:"more"`
}

// Category returns the totals for c, never nil.
func (s Summary) Category(c core.Category) *CategoryTotals {
	if t, ok := s.Categories[c]; ok {
		return t
	}
	return &CategoryTotals{Services: map[string]int{}}
}

// Filter returns the sales matching q in input order.
func Filter(sales []core.Sale, q Query) ([]core.Sale, error) {
	from, to := q.Date, q.Date
	if q.Period != "" && q.Period != Day {
		var err error
		if from, to, err = PeriodRange(q.Period, q.Date); err != nil {
			return nil, err
		}
	}
	all := q.Employee == "" || strings.EqualFold(q.Employee, "all")

	out := make([]core.Sale, 0, len(sales))
	for _, s := range sales {
		if s.Date < from || s.Date > to {
			continue
		}
		if !all && s.Employee != q.Employee {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Summarize filters sales by q and aggregates the result in one pass.
// Amounts that do not parse count as zero. A motorbike sale counts its
// numberOfMotorbikes, or one when that is missing or not positive.
func Summarize(sales []core.Sale, q Query) (Summary, error) {
	filtered, err := Filter(sales, q)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Query:      q,
		From:       q.Date,
		To:         q.Date,
		Categories: make(map[core.Category]*CategoryTotals, 3),
	}
	if q.Period != "" && q.Period != Day {
		sum.From, sum.To, _ = PeriodRange(q.Period, q.Date)
	}
	for _, c := range []core.Category{core.CategoryVehicle, core.CategoryMotorbike, core.CategoryCarpet} {
		sum.Categories[c] = &CategoryTotals{Services: map[string]int{}}
	}

	for _, s := range filtered {
		amount := s.Amount.Money()
		sum.TotalServices++
		sum.TotalRevenue = sum.TotalRevenue.Add(amount)

		totals, ok := sum.Categories[s.Category]
		if !ok {
			continue
		}
		totals.Revenue = totals.Revenue.Add(amount)
		if s.Category == core.CategoryMotorbike {
			n := s.NumberOfMotorbikes.Int()
			if n < 1 {
				n = 1
			}
			totals.Count += n
		} else {
			totals.Count++
		}
		svc := s.ResolvedServiceType()
		if svc == "" {
			svc = Unspecified
		}
		totals.Services[svc]++
	}

	if len(filtered) > RecentLimit {
		sum.Recent = filtered[:RecentLimit]
		sum.HasMore = true
		sum.More = len(filtered) - RecentLimit
	} else {
		sum.Recent = filtered
	}
	return sum, nil
}
