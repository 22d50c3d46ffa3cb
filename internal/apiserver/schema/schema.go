package schema

import (
	"time"
)

// Kind classifies a column for value coercion and default synthesis.
type Kind string

const (
	KindText      Kind = "text"
	KindInteger   Kind = "integer"
	KindNumeric   Kind = "numeric"
	KindBoolean   Kind = "boolean"
	KindJSON      Kind = "json"
	KindTimestamp Kind = "timestamp"
)

// Column describes one column of a storefront table: its kind, whether it
// accepts NULL, and whether the database supplies a default for it.
type Column struct {
	Name       string
	Kind       Kind
	Nullable   bool
	HasDefault bool
}

// Table describes a storefront table. Writes are restricted to the declared
// columns; the declarations mirror the gorm models in the database package.
type Table struct {
	Name    string
	Columns []Column

	byName map[string]Column
}

func newTable(name string, columns ...Column) *Table {
	t := &Table{Name: name, Columns: columns, byName: make(map[string]Column, len(columns))}
	for _, c := range columns {
		t.byName[c.Name] = c
	}
	return t
}

// Column returns the descriptor for the named column.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Has reports whether the table declares the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// JSONColumns returns the names of all JSON-typed columns.
func (t *Table) JSONColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if c.Kind == KindJSON {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Intersect returns the subset of keys that name declared columns,
// preserving declaration order for deterministic statements.
func (t *Table) Intersect(values map[string]any) []string {
	var cols []string
	for _, c := range t.Columns {
		if _, ok := values[c.Name]; ok {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// RequiredDefaults returns synthesized values for NOT NULL columns without a
// database default that the caller did not provide. The id column is always
// left to the database.
func (t *Table) RequiredDefaults(provided map[string]any, jsonDefault func(column string) any) map[string]any {
	defaults := make(map[string]any)
	for _, c := range t.Columns {
		if c.Nullable || c.HasDefault || c.Name == "id" {
			continue
		}
		if _, ok := provided[c.Name]; ok {
			continue
		}
		defaults[c.Name] = defaultFor(c, jsonDefault)
	}
	return defaults
}

func defaultFor(c Column, jsonDefault func(column string) any) any {
	switch c.Kind {
	case KindInteger, KindNumeric:
		return 0
	case KindBoolean:
		return false
	case KindTimestamp:
		return time.Now()
	case KindJSON:
		if jsonDefault != nil {
			return jsonDefault(c.Name)
		}
		return map[string]any{}
	default:
		return ""
	}
}
