// Package gateway gives every entity one CRUD contract and decides, per
// call, whether the remote store or the local fallback serves it.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"safisha/internal/core"
	applog "safisha/internal/log"
	"safisha/internal/store"
)

var ErrUnknownField = errors.New("unknown field")

// Record is implemented by every entity in core.
type Record interface {
	Validate() error
}

// Repository routes one collection to the remote store when it is
// configured and to the fallback otherwise. Remote read failures fall back
// to the local copy; remote write failures are returned to the caller.
type Repository[T Record] struct {
	coll       store.Collection
	remote     store.RowStore
	fallback   store.RowStore
	configured bool
	fields     map[string]struct{}
}

func newRepository[T Record](coll store.Collection, remote, fallback store.RowStore, configured bool) *Repository[T] {
	var zero T
	return &Repository[T]{
		coll:       coll,
		remote:     remote,
		fallback:   fallback,
		configured: configured && remote != nil,
		fields:     jsonFields(reflect.TypeOf(zero)),
	}
}

// Collection names the table this repository serves.
func (r *Repository[T]) Collection() store.Collection { return r.coll }

// Remote reports whether calls are routed to the remote store.
func (r *Repository[T]) Remote() bool { return r.configured }

func (r *Repository[T]) target() store.RowStore {
	if r.configured {
		return r.remote
	}
	return r.fallback
}

// Source says which store answered a read.
type Source int

const (
	// SourcePrimary is the store that takes writes.
	SourcePrimary Source = iota
	// SourceFallback is the local copy served after a remote read failed.
	SourceFallback
)

// GetAll returns every record, newest first.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	out, _, err := r.GetAllWithSource(ctx)
	return out, err
}

// GetAllWithSource is GetAll that also reports which store answered.
func (r *Repository[T]) GetAllWithSource(ctx context.Context) ([]T, Source, error) {
	rows, src, err := r.list(ctx)
	if err != nil {
		return nil, src, err
	}
	return r.decodeAll(ctx, rows), src, nil
}

func (r *Repository[T]) list(ctx context.Context) ([]store.Row, Source, error) {
	if !r.configured {
		rows, err := r.fallback.List(ctx, r.coll)
		if err != nil {
			return nil, SourcePrimary, fmt.Errorf("list %s: %w", r.coll, err)
		}
		return rows, SourcePrimary, nil
	}

	rows, err := r.remote.List(ctx, r.coll)
	if err == nil {
		return rows, SourcePrimary, nil
	}
	applog.FromContext(ctx).WarnContext(ctx, "Remote read failed, serving fallback store",
		applog.FieldCollection, r.coll.String(),
		applog.FieldOperation, applog.OpList,
		applog.FieldError, err.Error())

	rows, ferr := r.fallback.List(ctx, r.coll)
	if ferr != nil {
		return nil, SourceFallback, fmt.Errorf("list %s: remote: %v; fallback: %w", r.coll, err, ferr)
	}
	return rows, SourceFallback, nil
}

// Create validates rec and stores it. The returned record carries the
// store-assigned id.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	row, err := toRow(rec)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", r.coll, err)
	}
	delete(row, "id")

	out, err := r.target().Insert(ctx, r.coll, row)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", r.coll, err)
	}
	return fromRow[T](out)
}

// Update changes only the given fields of the record with id. Keys must be
// JSON field names of T, and the record with the patch applied must still
// pass Validate.
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	var zero T
	patch, err := r.checkPatch(fields)
	if err != nil {
		return zero, err
	}
	current, err := r.find(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", r.coll, err)
	}
	merged, err := fromRow[T](current.Merge(patch))
	if err != nil {
		return zero, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	if err := merged.Validate(); err != nil {
		return zero, err
	}

	out, err := r.target().Update(ctx, r.coll, id, patch)
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", r.coll, err)
	}
	return fromRow[T](out)
}

// find reads the row with id from the store that takes writes.
func (r *Repository[T]) find(ctx context.Context, id string) (store.Row, error) {
	rows, err := r.target().List(ctx, r.coll)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID() == id {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", r.coll, id, store.ErrNotFound)
}

// Delete removes the record with id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.target().Delete(ctx, r.coll, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.coll, id, err)
	}
	return nil
}

func (r *Repository[T]) checkPatch(fields map[string]any) (store.Row, error) {
	patch := make(store.Row, len(fields))
	var unknown []string
	for k, v := range fields {
		if k == "id" {
			continue
		}
		if _, ok := r.fields[k]; !ok {
			unknown = append(unknown, k)
			continue
		}
		patch[k] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w for %s: %s", ErrUnknownField, r.coll, strings.Join(unknown, ", "))
	}
	// Reject values that could never be read back into T.
	var probe T
	if err := remarshal(patch, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	return patch, nil
}

// decodeAll skips rows that cannot be read into T so one malformed legacy
// record does not hide the rest.
func (r *Repository[T]) decodeAll(ctx context.Context, rows []store.Row) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow[T](row)
		if err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Skipping undecodable record",
				applog.FieldCollection, r.coll.String(),
				"id", row.ID(),
				applog.FieldError, err.Error())
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toRow(v any) (store.Row, error) {
	var row store.Row
	if err := remarshal(v, &row); err != nil {
		return nil, err
	}
	return row, nil
}

func fromRow[T any](row store.Row) (T, error) {
	var out T
	if row != nil && row["id"] != nil {
		row = row.Clone()
		row["id"] = row.ID()
	}
	if err := remarshal(row, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

func remarshal(in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return store.DecodeJSON(b, out)
}

// jsonFields lists the JSON names of t's exported fields.
func jsonFields(t reflect.Type) map[string]struct{} {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		out[name] = struct{}{}
	}
	return out
}
