package types

import (
	"fmt"
	"reflect"

	"github.com/viant/structology/conv"
)

var converter = newConverter()

func newConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return conv.NewConverter(options)
}

// DecodeArgs converts an opaque argument map into the supplied typed struct
// pointer. Arguments round-trip through JSON between enqueue and approval, so
// numeric widening and missing optional fields are tolerated.
func DecodeArgs(args map[string]interface{}, target interface{}) error {
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}
	if err := converter.Convert(args, target); err != nil {
		return fmt.Errorf("failed to decode arguments into %T: %w", target, err)
	}
	return nil
}

// NewArgs creates a zero value instance pointer for the supplied argument
// type, unwrapping a pointer type if needed.
func NewArgs(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}
