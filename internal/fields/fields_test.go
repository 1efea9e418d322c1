package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleRoundTrip(t *testing.T) {
	tr := Default()
	stored := map[string]any{
		"id":                     "42",
		"date":                   "2024-01-10",
		"category":               "motorbike",
		"vehicle_model":          "",
		"vehicle_service_type":   nil,
		"motorbike_service_type": "Chain Lubrication",
		"number_of_motorbikes":   float64(3),
		"carpet_service_type":    nil,
		"payment_method":         "M-Pesa",
		"service_type":           "Motorbike Wash",
		"created_at":             "2024-01-10T08:00:00Z",
		"amount":                 float64(450),
	}

	app := tr.ToApp("sales", stored)
	assert.Equal(t, "M-Pesa", app["paymentMethod"])
	assert.Equal(t, float64(3), app["numberOfMotorbikes"])
	assert.Equal(t, "Chain Lubrication", app["motorbikeServiceType"])
	assert.NotContains(t, app, "payment_method")
	assert.Equal(t, float64(450), app["amount"])

	assert.Equal(t, stored, tr.ToStorage("sales", app))
}

func TestUnknownCollectionPassesThrough(t *testing.T) {
	tr := Default()
	row := map[string]any{"some_column": 1}
	assert.Equal(t, row, tr.ToApp("nope", row))
	assert.Nil(t, tr.ToApp("sales", nil))
}

func TestLeadColumns(t *testing.T) {
	tr := Default()
	assert.Equal(t, "customer_phone", tr.Column("leads", "customerPhone"))
	assert.Equal(t, "date", tr.Column("leads", "date"))
	assert.Equal(t, "id_number", tr.Column("employees", "idNumber"))
}

func TestParseRejectsDuplicateField(t *testing.T) {
	_, err := Parse([]byte("sales:\n  a_b: ab\n  ab_: ab\n"))
	require.Error(t, err)

	_, err = Parse([]byte("sales: [1, 2]"))
	require.Error(t, err)
}

func TestPairsSorted(t *testing.T) {
	pairs := Default().Pairs("employees")
	require.Len(t, pairs, 3)
	assert.Equal(t, [2]string{"created_at", "createdAt"}, pairs[0])
	assert.Equal(t, [2]string{"id_number", "idNumber"}, pairs[2])
}
