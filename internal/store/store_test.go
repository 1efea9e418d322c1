package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowID(t *testing.T) {
	assert.Equal(t, "abc", Row{"id": "abc"}.ID())
	assert.Equal(t, "1704873600000", Row{"id": float64(1704873600000)}.ID())
	assert.Equal(t, "7", Row{"id": 7}.ID())
	assert.Equal(t, "42", Row{"id": json.Number("42")}.ID())
	assert.Equal(t, "", Row{}.ID())
}

func TestDecodeJSONKeepsNumberText(t *testing.T) {
	var row Row
	require.NoError(t, DecodeJSON([]byte(`{"amount":1200.00,"big":12345678901234567.89}`), &row))
	assert.Equal(t, json.Number("1200.00"), row["amount"])
	assert.Equal(t, json.Number("12345678901234567.89"), row["big"])

	assert.Error(t, DecodeJSON([]byte(`{"a":1} {"b":2}`), &row))
	assert.Error(t, DecodeJSON([]byte(`{"a":`), &row))
}

func TestMergeLeavesOriginal(t *testing.T) {
	orig := Row{"id": "1", "name": "Ann", "phone": "0700"}
	merged := orig.Merge(Row{"phone": "0711"})

	assert.Equal(t, "0700", orig["phone"])
	assert.Equal(t, Row{"id": "1", "name": "Ann", "phone": "0711"}, merged)
}

func TestCollectionValid(t *testing.T) {
	assert.True(t, Leads.Valid())
	assert.False(t, Collection("invoices").Valid())
}

func TestTimestampUTC(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	ts := time.Date(2024, 1, 10, 11, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-10T08:00:00Z", Timestamp(ts))
}
