package types

import "math"

type ValueKind int

const (
	ValueUndefined ValueKind = iota
	ValueFloat
	ValueString
	ValueArray
)

// Value is one master table cell. The zero Value is undefined.
type Value struct {
	Kind  ValueKind
	Float float64
	Str   string
	Array []float64
}

func FloatValue(v float64) Value {
	if math.IsNaN(v) {
		return Value{}
	}
	return Value{Kind: ValueFloat, Float: v}
}

func StringValue(v string) Value {
	if v == "" {
		return Value{}
	}
	return Value{Kind: ValueString, Str: v}
}

func ArrayValue(v []float64) Value {
	if v == nil {
		return Value{}
	}
	return Value{Kind: ValueArray, Array: v}
}

func (v Value) Defined() bool {
	return v.Kind != ValueUndefined
}

// MasterTable is the run's output: one row per selected target, one
// column per requested tag.
type MasterTable struct {
	Columns []string
	Index   []IdentityKey
	rows    map[IdentityKey]map[string]Value
	columns map[string]struct{}
}

func NewMasterTable(index []IdentityKey, columns []string) *MasterTable {
	table := &MasterTable{
		Columns: append([]string(nil), columns...),
		Index:   append([]IdentityKey(nil), index...),
		rows:    make(map[IdentityKey]map[string]Value, len(index)),
		columns: make(map[string]struct{}, len(columns)),
	}
	for _, column := range columns {
		table.columns[column] = struct{}{}
	}
	for _, key := range index {
		table.rows[key] = make(map[string]Value, len(columns))
	}
	return table
}

func (t *MasterTable) HasColumn(tag string) bool {
	_, ok := t.columns[tag]
	return ok
}

func (t *MasterTable) HasRow(key IdentityKey) bool {
	_, ok := t.rows[key]
	return ok
}

// Get returns the cell at (key, tag); unknown rows or columns read as
// undefined.
func (t *MasterTable) Get(key IdentityKey, tag string) Value {
	row, ok := t.rows[key]
	if !ok {
		return Value{}
	}
	return row[tag]
}

// Set writes a cell and reports whether the row and column exist.
func (t *MasterTable) Set(key IdentityKey, tag string, value Value) bool {
	row, ok := t.rows[key]
	if !ok || !t.HasColumn(tag) {
		return false
	}
	row[tag] = value
	return true
}

func (t *MasterTable) Len() int {
	return len(t.Index)
}
