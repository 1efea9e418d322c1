// Package fields renames record keys between the storage schema
// (snake_case columns) and the application's camelCase fields.
package fields

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed mapping.yaml
var defaultMapping []byte

type table struct {
	toApp     map[string]string
	toStorage map[string]string
}

// Translator holds one fixed mapping table per collection.
type Translator struct {
	tables map[string]table
}

// Default returns the translator built from the embedded mapping.
// It panics if the embedded document is malformed.
func Default() *Translator {
	t, err := Parse(defaultMapping)
	if err != nil {
		panic(fmt.Sprintf("fields: embedded mapping: %v", err))
	}
	return t
}

// Parse builds a translator from a YAML document of the form
// collection -> {storage_column: appField}.
func Parse(doc []byte) (*Translator, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	t := &Translator{tables: make(map[string]table, len(raw))}
	for coll, cols := range raw {
		tb := table{
			toApp:     make(map[string]string, len(cols)),
			toStorage: make(map[string]string, len(cols)),
		}
		for col, field := range cols {
			if col == "" || field == "" {
				return nil, fmt.Errorf("collection %s: empty name in mapping %q -> %q", coll, col, field)
			}
			if prev, dup := tb.toStorage[field]; dup {
				return nil, fmt.Errorf("collection %s: field %s mapped from both %s and %s", coll, field, prev, col)
			}
			tb.toApp[col] = field
			tb.toStorage[field] = col
		}
		t.tables[coll] = tb
	}
	return t, nil
}

// ToApp returns a copy of row with storage columns renamed to application
// fields. Unknown keys are kept as they are.
func (t *Translator) ToApp(collection string, row map[string]any) map[string]any {
	return rename(row, t.tables[collection].toApp)
}

// ToStorage is the inverse of ToApp.
func (t *Translator) ToStorage(collection string, row map[string]any) map[string]any {
	return rename(row, t.tables[collection].toStorage)
}

// Column returns the storage column for an application field.
func (t *Translator) Column(collection, field string) string {
	if col, ok := t.tables[collection].toStorage[field]; ok {
		return col
	}
	return field
}

// Pairs lists the storage/application name pairs of a collection, sorted by
// column.
func (t *Translator) Pairs(collection string) [][2]string {
	tb := t.tables[collection]
	out := make([][2]string, 0, len(tb.toApp))
	for col, field := range tb.toApp {
		out = append(out, [2]string{col, field})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func rename(row map[string]any, names map[string]string) map[string]any {
	if row == nil {
		return nil
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		if n, ok := names[k]; ok {
			k = n
		}
		out[k] = v
	}
	return out
}
