package core

import "fmt"

// MarshalledValue is a single decoded column value.
type MarshalledValue struct {
	Value any
	Null  bool
}

// NullValue returns the marshalled SQL NULL.
func NullValue() MarshalledValue {
	return MarshalledValue{Null: true}
}

// ValueOf wraps a decoded, non-null value.
func ValueOf(v any) MarshalledValue {
	return MarshalledValue{Value: v}
}

// Interface returns the value, or nil when it is NULL.
func (v MarshalledValue) Interface() any {
	if v.Null {
		return nil
	}
	return v.Value
}

func (v MarshalledValue) String() string {
	if v.Null {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Value)
}
