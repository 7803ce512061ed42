// Package mapping projects intake form data onto the opaque field IDs of
// an external record schema. Tables are plain data (see tables/*.yaml) so
// a schema change is a configuration change, not a code change.
package mapping

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/formpath"
)

// Fields is a record payload keyed by external field ID.
type Fields map[string]any

// Project writes every non-empty source value of src through table.
//
// The table is validated against src's shape before anything is read, so
// a bad table fails with a ConfigurationError and no output. Absent and
// empty values are omitted. Values that fail their coercion are reported
// as MappingErrors (joined); the returned Fields still hold every entry
// that succeeded so the caller can choose to abort or report.
func Project(src any, table Table) (Fields, error) {
	shape := reflect.TypeOf(src)
	for shape != nil && shape.Kind() == reflect.Pointer {
		shape = shape.Elem()
	}
	if shape == nil || shape.Kind() != reflect.Struct {
		return nil, &domain.ConfigurationError{Table: table.name(), Reason: fmt.Sprintf("cannot project %T", src)}
	}
	if want, ok := shapes[table.Schema]; ok && want != shape {
		return nil, &domain.ConfigurationError{Table: table.name(),
			Reason: fmt.Sprintf("%s table applied to %s", table.Schema, shape.Name())}
	}
	if err := table.validateShape(shape); err != nil {
		return nil, err
	}

	fields := make(Fields, len(table.Entries))
	var errs []error
	for _, e := range table.Entries {
		raw, ok := formpath.Resolve(src, e.SourceKey)
		if !ok || formpath.IsEmpty(raw) {
			continue
		}
		kind := resolveTransform(e)
		v, err := transforms[kind](raw)
		if err != nil {
			if e.DefaultZero && isNumeric(kind) {
				fields[e.ExternalFieldID] = 0.0
				continue
			}
			errs = append(errs, &domain.MappingError{
				SourceKey: e.SourceKey,
				Target:    e.ExternalFieldID,
				Raw:       raw,
				Reason:    err.Error(),
			})
			continue
		}
		fields[e.ExternalFieldID] = v
	}
	return fields, errors.Join(errs...)
}
