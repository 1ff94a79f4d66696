package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists the "db" tagged columns of T, descending into
// embedded structs.
//
//	columns := ExtractDBColumns[invoice.Invoice]()
//	// ["id", "number", "date", "counterparty_name", ..., "sub_total", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	meta := metadataOf(t)
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		cols = append(cols, f.column)
	}
	return cols
}

type field struct {
	column string
	index  []int
}

type typeMetadata struct {
	fields []field
}

var typeCache sync.Map // reflect.Type -> *typeMetadata

// metadataOf flattens the tagged fields of t once and caches the result.
func metadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collect(t, nil, &meta.fields)
	}
	typeCache.Store(t, meta)
	return meta
}

func collect(t reflect.Type, prefix []int, out *[]field) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct {
			collect(f.Type, index, out)
			continue
		}
		if tag == "" || !f.IsExported() {
			continue
		}
		*out = append(*out, field{column: tag, index: index})
	}
}

// StructToMap converts a struct to column values using its "db" tags.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataOf(rv.Type())
	res := make(map[string]any, len(meta.fields))
	for _, f := range meta.fields {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

// StructValues returns the values of v for columns, in order. Unknown
// columns yield nil.
func StructValues(v any, columns []string) []any {
	m := StructToMap(v)
	out := make([]any, len(columns))
	for i, col := range columns {
		out[i] = m[col]
	}
	return out
}
