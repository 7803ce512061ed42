// Package formpath resolves canonical source keys against the intake form
// shapes. A source key is a dotted path of JSON field names, for example
// "propertyData.salePrice" or "commissionData.totalCommissionPercentage".
//
// Two role-scoped prefixes are understood on the transaction shape:
// "buyer.<field>" and "seller.<field>" address the first client of that type.
package formpath

import (
	"reflect"
	"strings"

	"github.com/csg33k/txn-intake/internal/domain"
)

const (
	BuyerScope  = "buyer"
	SellerScope = "seller"
)

var (
	stateType  = reflect.TypeOf(domain.TransactionFormState{})
	clientType = reflect.TypeOf(domain.Client{})
)

// Known reports whether path names a leaf field of t. Struct-valued fields
// and slices of structs are not leaves.
func Known(t reflect.Type, path string) bool {
	if path == "" {
		return false
	}
	t = deref(t)
	for _, part := range strings.Split(path, ".") {
		t = deref(t)
		if t.Kind() != reflect.Struct {
			return false
		}
		f, ok := fieldByName(t, part)
		if !ok {
			return false
		}
		t = f.Type
	}
	t = deref(t)
	switch t.Kind() {
	case reflect.Struct:
		return false
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Struct
	}
	return true
}

// KnownInState reports whether path is a valid key on the transaction
// shape, including the buyer./seller. scoped keys.
func KnownInState(path string) bool {
	if _, rest, ok := SplitScope(path); ok {
		return Known(clientType, rest)
	}
	return Known(stateType, path)
}

// SplitScope splits a role-scoped key into the client type it selects and
// the client field path.
func SplitScope(path string) (domain.ClientType, string, bool) {
	scope, rest, found := strings.Cut(path, ".")
	if !found {
		return "", "", false
	}
	switch scope {
	case BuyerScope:
		return domain.ClientBuyer, rest, true
	case SellerScope:
		return domain.ClientSeller, rest, true
	}
	return "", "", false
}

// Resolve returns the value at path inside v. ok is false when the path
// does not exist or crosses a nil pointer. Named string and bool types are
// returned as plain string and bool.
func Resolve(v any, path string) (any, bool) {
	rv := reflect.ValueOf(v)
	for _, part := range strings.Split(path, ".") {
		for rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, false
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return nil, false
		}
		f, ok := fieldByName(rv.Type(), part)
		if !ok {
			return nil, false
		}
		rv = rv.FieldByIndex(f.Index)
	}
	return leaf(rv)
}

// ResolveInState resolves path on a transaction, following scoped keys to
// the first matching client. A missing client resolves to absent.
func ResolveInState(state *domain.TransactionFormState, path string) (any, bool) {
	if ct, rest, ok := SplitScope(path); ok {
		c, found := domain.FirstClientOfType(state.Clients, ct)
		if !found {
			return nil, false
		}
		return Resolve(c, rest)
	}
	return Resolve(state, path)
}

// IsEmpty reports whether a resolved value counts as missing data.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func leaf(rv reflect.Value) (any, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.String {
			out := make([]string, rv.Len())
			for i := range out {
				out[i] = rv.Index(i).String()
			}
			return out, true
		}
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return nil, false
	}
	return rv.Interface(), true
}

func fieldByName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = f.Name
		}
		if tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
