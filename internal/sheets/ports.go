package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"safisha/internal/analytics"
	"safisha/internal/core"
)

// DefaultPriority fills the Priority column when an entry has none.
const DefaultPriority = "Normal"

// Header is the first row of the mirror sheet.
var Header = []string{
	"Timestamp", "Customer Name", "Phone Number", "Location",
	"Vehicle Model", "Vehicle Reg No", "Service Man", "Assistant",
	"Service Type", "Payment Method", "Amount", "Notes", "Priority", "Entry ID",
}

// Entry is one row of the mirror sheet.
type Entry struct {
	Timestamp     string `json:"timestamp"`
	CustomerName  string `json:"customerName"`
	PhoneNumber   string `json:"phoneNumber"`
	Location      string `json:"location"`
	VehicleModel  string `json:"vehicleModel"`
	VehicleRegNo  string `json:"vehicleRegNo"`
	ServiceMan    string `json:"serviceMan"`
	Assistant     string `json:"assistant"`
	ServiceType   string `json:"serviceType"`
	PaymentMethod string `json:"paymentMethod"`
	Amount        string `json:"amount"`
	Notes         string `json:"notes"`
	Priority      string `json:"priority"`
	EntryID       string `json:"entryId"`
}

// Ports for outbound adapters.
type (
	EntryWriter interface {
		// AppendEntry adds e as a new row and returns a reference to it.
		AppendEntry(ctx context.Context, e Entry) (rowRef string, err error)
	}

	EntryLister interface {
		ListEntries(ctx context.Context) ([]Entry, error)
	}

	Mirror interface {
		EntryWriter
		EntryLister
	}
)

// EntryFromSale maps a sale onto the sheet columns.
func EntryFromSale(s core.Sale) Entry {
	ts := s.CreatedAt
	if ts == "" {
		ts = s.Date
	}
	svc := s.ResolvedServiceType()
	if svc == "" {
		svc = analytics.Unspecified
	}
	return Entry{
		Timestamp:     ts,
		VehicleModel:  s.VehicleModel,
		ServiceMan:    s.Employee,
		ServiceType:   svc,
		PaymentMethod: s.PaymentMethod,
		Amount:        s.Amount.String(),
		Notes:         s.Description,
		Priority:      DefaultPriority,
		EntryID:       s.ID,
	}
}

// Row returns the entry as sheet cells in column order. An empty priority
// becomes DefaultPriority.
func (e Entry) Row() []any {
	p := e.Priority
	if p == "" {
		p = DefaultPriority
	}
	return []any{
		e.Timestamp, e.CustomerName, e.PhoneNumber, e.Location,
		e.VehicleModel, e.VehicleRegNo, e.ServiceMan, e.Assistant,
		e.ServiceType, e.PaymentMethod, e.Amount, e.Notes, p, e.EntryID,
	}
}

// EntryFromRow is the inverse of Row. Short rows leave trailing columns
// empty.
func EntryFromRow(row []any) Entry {
	cell := func(i int) string {
		if i >= len(row) || row[i] == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}
	return Entry{
		Timestamp:     cell(0),
		CustomerName:  cell(1),
		PhoneNumber:   cell(2),
		Location:      cell(3),
		VehicleModel:  cell(4),
		VehicleRegNo:  cell(5),
		ServiceMan:    cell(6),
		Assistant:     cell(7),
		ServiceType:   cell(8),
		PaymentMethod: cell(9),
		Amount:        cell(10),
		Notes:         cell(11),
		Priority:      cell(12),
		EntryID:       cell(13),
	}
}

// UnmarshalJSON accepts numbers and booleans for any column, since the sheet
// returns typed cell values.
func (e *Entry) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	s := func(key string) string {
		v, ok := m[key]
		if !ok || v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
	*e = Entry{
		Timestamp:     s("timestamp"),
		CustomerName:  s("customerName"),
		PhoneNumber:   s("phoneNumber"),
		Location:      s("location"),
		VehicleModel:  s("vehicleModel"),
		VehicleRegNo:  s("vehicleRegNo"),
		ServiceMan:    s("serviceMan"),
		Assistant:     s("assistant"),
		ServiceType:   s("serviceType"),
		PaymentMethod: s("paymentMethod"),
		Amount:        s("amount"),
		Notes:         s("notes"),
		Priority:      s("priority"),
		EntryID:       s("entryId"),
	}
	return nil
}
