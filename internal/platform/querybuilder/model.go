package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT covering every db-tagged field of model.
// Untagged embedded structs are flattened the way sqlx flattens them on
// the scan side.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value, err := derefModel(model)
	if err != nil {
		return "", nil, err
	}

	cols, vals := modelColumns(value)
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("model has no db columns")
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

func derefModel(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct")
	}
	return value, nil
}

func modelColumns(value reflect.Value) ([]string, []any) {
	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := strings.TrimSpace(field.Tag.Get("db"))

		if field.Anonymous && tag == "" {
			if embedded, ok := derefEmbedded(value.Field(i)); ok {
				ecols, evals := modelColumns(embedded)
				cols = append(cols, ecols...)
				vals = append(vals, evals...)
			}
			continue
		}
		if field.PkgPath != "" || tag == "" || tag == "-" {
			continue
		}

		col := strings.TrimSpace(strings.Split(tag, ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	return cols, vals
}

func derefEmbedded(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}
