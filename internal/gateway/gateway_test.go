package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safisha/internal/core"
	"safisha/internal/store"
	"safisha/internal/store/local"
)

// flakyRemote is a working store that can be switched to fail reads or
// writes.
type flakyRemote struct {
	*local.Store
	failReads  bool
	failWrites bool
	uploads    []string
}

var errRemoteDown = errors.New("remote unavailable")

func (f *flakyRemote) List(ctx context.Context, c store.Collection) ([]store.Row, error) {
	if f.failReads {
		return nil, errRemoteDown
	}
	return f.Store.List(ctx, c)
}

func (f *flakyRemote) Insert(ctx context.Context, c store.Collection, row store.Row) (store.Row, error) {
	if f.failWrites {
		return nil, errRemoteDown
	}
	return f.Store.Insert(ctx, c, row)
}

func (f *flakyRemote) Delete(ctx context.Context, c store.Collection, id string) error {
	if f.failWrites {
		return errRemoteDown
	}
	return f.Store.Delete(ctx, c, id)
}

func (f *flakyRemote) UploadPhoto(_ context.Context, name, _ string, _ []byte) (string, error) {
	f.uploads = append(f.uploads, name)
	return "https://cdn.example/" + name, nil
}

var clock = func() time.Time { return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC) }

func newFallbackOnly() *Gateway {
	return New(Options{Fallback: local.NewWithClock(local.NewMemoryKV(), clock), Now: clock})
}

func newWithRemote(configured bool) (*Gateway, *flakyRemote, *local.Store) {
	remote := &flakyRemote{Store: local.NewWithClock(local.NewMemoryKV(), clock)}
	fallback := local.NewWithClock(local.NewMemoryKV(), clock)
	g := New(Options{Remote: remote, Fallback: fallback, Configured: configured, Now: clock})
	return g, remote, fallback
}

func sale(category core.Category, employee, amount string) core.Sale {
	return core.Sale{Date: "2024-01-10", Category: category, Employee: employee, Amount: core.Decimal(amount)}
}

func TestCreateThenGetAllContainsExactlyOne(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()

	created, err := g.Sales.Create(ctx, sale(core.CategoryVehicle, "Brian", "500"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Vehicle Wash", created.ServiceType)
	assert.Equal(t, "Vehicle Wash - Brian", created.Description)

	all, err := g.Sales.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created, all[0])
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	_, err := newFallbackOnly().Employees.Create(context.Background(), core.Employee{Name: "NoPhone"})
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestCreateDefaultsDate(t *testing.T) {
	s := sale(core.CategoryCarpet, "Amina", "300")
	s.Date = ""
	created, err := newFallbackOnly().Sales.Create(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", created.Date)
}

func TestUpdateChangesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()

	before, err := g.Employees.Create(ctx, core.Employee{Name: "Otieno", Phone: "0700", IDNumber: "1234", DateAdded: "2024-01-01"})
	require.NoError(t, err)

	after, err := g.Employees.Update(ctx, before.ID, map[string]any{"phone": "0711"})
	require.NoError(t, err)

	want := before
	want.Phone = "0711"
	assert.Equal(t, want, after)
}

func TestUpdateRejectsUnknownAndMistypedFields(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	e, err := g.Employees.Create(ctx, core.Employee{Name: "Otieno", Phone: "0700"})
	require.NoError(t, err)

	_, err = g.Employees.Update(ctx, e.ID, map[string]any{"salary": 100, "phone_number": "1"})
	require.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), "phone_number, salary")

	_, err = g.Sales.Update(ctx, e.ID, map[string]any{"returned": "yes"})
	assert.True(t, errors.Is(err, core.ErrValidation))

	_, err = g.Employees.Update(ctx, "missing", map[string]any{"phone": "1"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateRejectsPatchThatBreaksRecord(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	before, err := g.Sales.Create(ctx, sale(core.CategoryVehicle, "Brian", "500"))
	require.NoError(t, err)

	_, err = g.Sales.Update(ctx, before.ID, map[string]any{
		"category": "boat",
		"amount":   "-50",
		"date":     "yesterday",
		"employee": "",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), "employee is required")

	_, err = g.Sales.Update(ctx, before.ID, map[string]any{"amount": "-50"})
	assert.True(t, errors.Is(err, core.ErrValidation))

	all, err := g.Sales.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, before, all[0])
}

func TestUpdateMissingIDIsNotFoundBeforeValidation(t *testing.T) {
	_, err := newFallbackOnly().Sales.Update(context.Background(), "missing", map[string]any{"employee": ""})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAmountTextSurvivesStorage(t *testing.T) {
	ctx := context.Background()
	for name, g := range map[string]*Gateway{
		"fallback": newFallbackOnly(),
		"remote":   func() *Gateway { g, _, _ := newWithRemote(true); return g }(),
	} {
		t.Run(name, func(t *testing.T) {
			amounts := []string{"500.10", "1200.00", "12345678901234567.89"}
			for _, amount := range amounts {
				created, err := g.Sales.Create(ctx, sale(core.CategoryVehicle, "Brian", amount))
				require.NoError(t, err)
				assert.Equal(t, amount, created.Amount.String())
			}

			all, err := g.Sales.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, len(amounts))
			got := make([]string, 0, len(all))
			for _, s := range all {
				got = append(got, s.Amount.String())
			}
			assert.ElementsMatch(t, amounts, got)

			updated, err := g.Sales.Update(ctx, all[0].ID, map[string]any{"amount": "750.50"})
			require.NoError(t, err)
			assert.Equal(t, "750.50", updated.Amount.String())
		})
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	a, err := g.Notes.Create(ctx, core.Note{Category: core.NoteIncident, Content: "hose burst", Date: "2024-01-10"})
	require.NoError(t, err)
	_, err = g.Notes.Create(ctx, core.Note{Category: core.NoteClientQuery, Content: "wax price", Date: "2024-01-10"})
	require.NoError(t, err)

	require.NoError(t, g.Notes.Delete(ctx, "does-not-exist"))
	all, _ := g.Notes.GetAll(ctx)
	assert.Len(t, all, 2)

	require.NoError(t, g.Notes.Delete(ctx, a.ID))
	all, _ = g.Notes.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "wax price", all[0].Content)
}

func TestUnconfiguredRemoteIsNeverCalled(t *testing.T) {
	ctx := context.Background()
	g, remote, fallback := newWithRemote(false)
	remote.failReads, remote.failWrites = true, true

	_, err := g.Leads.Create(ctx, core.Lead{AssetType: core.CategoryCarpet, CarpetType: "Shaggy", CustomerName: "Njeri", CustomerPhone: "0700"})
	require.NoError(t, err)
	rows, _ := fallback.List(ctx, store.Leads)
	assert.Len(t, rows, 1)
	assert.False(t, g.RemoteActive())
}

func TestRemoteReadFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	g, remote, fallback := newWithRemote(true)

	_, err := fallback.Insert(ctx, store.Sales, store.Row{"date": "2024-01-09", "category": "vehicle", "employee": "Old", "amount": "100"})
	require.NoError(t, err)
	_, err = g.Sales.Create(ctx, sale(core.CategoryVehicle, "New", "200"))
	require.NoError(t, err)

	all, err := g.Sales.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New", all[0].Employee)

	_, src, err := g.Sales.GetAllWithSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, src)

	remote.failReads = true
	all, src, err = g.Sales.GetAllWithSource(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Old", all[0].Employee)
	assert.Equal(t, SourceFallback, src)
}

func TestRemoteWriteFailurePropagates(t *testing.T) {
	ctx := context.Background()
	g, remote, fallback := newWithRemote(true)
	remote.failWrites = true

	_, err := g.Sales.Create(ctx, sale(core.CategoryVehicle, "Brian", "500"))
	require.True(t, errors.Is(err, errRemoteDown))

	err = g.Sales.Delete(ctx, "x")
	require.True(t, errors.Is(err, errRemoteDown))

	rows, _ := fallback.List(ctx, store.Sales)
	assert.Empty(t, rows, "a failed remote write is not redirected to the fallback")
}

func TestMarkAsReturned(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	s, err := g.Sales.Create(ctx, sale(core.CategoryCarpet, "Amina", "800"))
	require.NoError(t, err)

	got, err := g.Sales.MarkAsReturned(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Returned)
	assert.Equal(t, "2024-01-10T08:00:00Z", got.ReturnedDate)
	assert.Equal(t, s.Amount, got.Amount)
}

func TestGetByDateAndEmployee(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	for _, s := range []core.Sale{
		sale(core.CategoryVehicle, "Brian", "500"),
		{Date: "2024-01-11", Category: core.CategoryCarpet, Employee: "Brian", Amount: "300"},
		sale(core.CategoryMotorbike, "Amina", "200"),
	} {
		_, err := g.Sales.Create(ctx, s)
		require.NoError(t, err)
	}

	byDate, err := g.Sales.GetByDate(ctx, "2024-01-10")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byEmployee, err := g.Sales.GetByEmployee(ctx, "Brian")
	require.NoError(t, err)
	assert.Len(t, byEmployee, 2)
	for _, s := range byEmployee {
		assert.Equal(t, "Brian", s.Employee)
	}
}

func TestUploadPhotoInlinesWithoutRemote(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	e, err := g.Employees.Create(ctx, core.Employee{Name: "Otieno", Phone: "0700"})
	require.NoError(t, err)

	got, err := g.Employees.UploadPhoto(ctx, e.ID, "me.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,cG5n", got.Photo)
}

func TestUploadPhotoUsesRemotePhotoStore(t *testing.T) {
	ctx := context.Background()
	g, remote, _ := newWithRemote(true)
	e, err := g.Employees.Create(ctx, core.Employee{Name: "Otieno", Phone: "0700"})
	require.NoError(t, err)

	got, err := g.Employees.UploadPhoto(ctx, e.ID, "Me.JPG", "image/jpeg", []byte("jpg"))
	require.NoError(t, err)
	require.Len(t, remote.uploads, 1)
	assert.Equal(t, e.ID+"-1704873600000.jpg", remote.uploads[0])
	assert.True(t, strings.HasPrefix(got.Photo, "https://cdn.example/"))
}

func TestUploadPhotoForUnknownEmployeeUploadsNothing(t *testing.T) {
	g, remote, _ := newWithRemote(true)

	_, err := g.Employees.UploadPhoto(context.Background(), "missing", "me.jpg", "image/jpeg", []byte("jpg"))
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Empty(t, remote.uploads)
}

func TestUploadPhotoLimits(t *testing.T) {
	ctx := context.Background()
	g := newFallbackOnly()
	e, err := g.Employees.Create(ctx, core.Employee{Name: "Otieno", Phone: "0700"})
	require.NoError(t, err)

	_, err = g.Employees.UploadPhoto(ctx, e.ID, "big.png", "image/png", make([]byte, MaxPhotoBytes+1))
	assert.True(t, errors.Is(err, ErrPhotoTooLarge))

	_, err = g.Employees.UploadPhoto(ctx, e.ID, "cv.pdf", "application/pdf", []byte("%PDF"))
	assert.True(t, errors.Is(err, ErrNotImage))
}

func TestMalformedLegacyRowsAreSkipped(t *testing.T) {
	ctx := context.Background()
	fallback := local.NewWithClock(local.NewMemoryKV(), clock)
	g := New(Options{Fallback: fallback, Now: clock})

	_, err := fallback.Insert(ctx, store.Sales, store.Row{"date": "2024-01-10", "category": "vehicle", "employee": "A", "amount": "abc"})
	require.NoError(t, err)
	_, err = fallback.Insert(ctx, store.Sales, store.Row{"date": "2024-01-10", "returned": "not-a-bool"})
	require.NoError(t, err)

	all, err := g.Sales.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, core.Decimal("abc"), all[0].Amount)
}
