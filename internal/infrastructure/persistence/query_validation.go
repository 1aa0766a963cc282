package persistence

import (
	"reflect"
	"strings"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
)

// collectionColumns is the column whitelist per collection, built from the
// engine's projections. Anything outside it never reaches SQL.
var collectionColumns = func() map[ledger.CollectionName]map[string]bool {
	out := make(map[ledger.CollectionName]map[string]bool, len(ledger.CollectionFields))
	for name, fields := range ledger.CollectionFields {
		allowed := make(map[string]bool, len(fields))
		for _, f := range fields {
			allowed[f] = true
		}
		out[name] = allowed
	}
	return out
}()

// ValidateField checks field against the whitelist of the collection
func ValidateField(name ledger.CollectionName, field string) error {
	allowed, ok := collectionColumns[name]
	if !ok {
		return shared.ErrInvalidInput.WithDetail("unknown collection %q", string(name))
	}
	if !allowed[strings.TrimSpace(field)] {
		return shared.ErrInvalidInput.WithDetail("field %q not allowed on %s", field, name)
	}
	return nil
}

// ValidateQuery checks every field, filter and ordering in q
func ValidateQuery(q ledger.CollectionQuery) error {
	if !q.Name.IsValid() {
		return shared.ErrInvalidInput.WithDetail("unknown collection %q", string(q.Name))
	}
	for _, f := range q.Fields {
		if err := ValidateField(q.Name, f); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := ValidateField(q.Name, f.Field); err != nil {
			return err
		}
		if !f.Op.IsValid() {
			return shared.ErrInvalidInput.WithDetail("operator %q not supported", string(f.Op))
		}
		if f.Op == ledger.OpIn && !isList(f.Value) {
			return shared.ErrInvalidInput.WithDetail("operator in on %s needs a list", f.Field)
		}
	}
	for _, o := range q.OrderBy {
		if err := ValidateField(q.Name, o.Field); err != nil {
			return err
		}
	}
	return nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// listValues flattens a slice or array value into []any
func listValues(v any) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
