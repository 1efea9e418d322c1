package core

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Decimal is a numeric field as the user typed it. Records written by older
// clients carry amounts as strings, numbers, or junk; Decimal accepts all of
// them and leaves interpretation to Cents and Int.
type Decimal string

// NewDecimal formats f without trailing zeros.
func NewDecimal(f float64) Decimal {
	return Decimal(strconv.FormatFloat(f, 'f', -1, 64))
}

// Cents returns the amount in cents, or 0 when the text is not a
// non-negative number.
func (d Decimal) Cents() int64 {
	c, err := ParseAmount(string(d))
	if err != nil {
		return 0
	}
	return c
}

// Money is Cents wrapped as Money.
func (d Decimal) Money() Money {
	return Money{Cents: d.Cents()}
}

// Int returns the whole part of the value, or 0 when unparseable.
func (d Decimal) Int() int64 {
	return d.Cents() / 100
}

func (d Decimal) String() string {
	return string(d)
}

// MarshalJSON emits a JSON number when the text is numeric and a string
// otherwise, so malformed legacy values survive a round trip.
func (d Decimal) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(d))
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("decimal: %w", err)
		}
		*d = Decimal(n.String())
	}
	return nil
}

// Value stores empty decimals as NULL and everything else as text.
func (d Decimal) Value() (driver.Value, error) {
	if strings.TrimSpace(string(d)) == "" {
		return nil, nil
	}
	return string(d), nil
}

func (d *Decimal) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case string:
		*d = Decimal(v)
	case []byte:
		*d = Decimal(string(v))
	case int64:
		*d = Decimal(strconv.FormatInt(v, 10))
	case float64:
		*d = NewDecimal(v)
	default:
		return fmt.Errorf("decimal: unsupported scan type %T", src)
	}
	return nil
}
