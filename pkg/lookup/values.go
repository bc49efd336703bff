package lookup

import (
	"fmt"
	"reflect"
	"sort"
)

// NotIterableError reports a collection path that resolved to a value that
// cannot be repeated over.
type NotIterableError struct {
	Value any
}

func (e *NotIterableError) Error() string {
	return fmt.Sprintf("lookup: value of type %T is not iterable", e.Value)
}

// Truthy reports whether a resolved value enables a guarded section. nil, the
// empty string, false, numeric zero, nil pointers and empty collections are
// falsy; a whitespace-only string is truthy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case *Scope:
		return v != nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// String formats a resolved value for text or attribute output.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

// Items returns the elements of a collection in iteration order: slices and
// arrays by index, maps by sorted key. nil yields no items; any other value is
// a *NotIterableError.
func Items(value any) ([]any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	}

	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() {
		return nil, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		items := make([]any, len(keys))
		for i, key := range keys {
			items[i] = rv.MapIndex(key).Interface()
		}
		return items, nil
	default:
		return nil, &NotIterableError{Value: value}
	}
}
