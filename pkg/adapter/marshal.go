package adapter

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Marshaller converts one raw column value into a host-level value.
// Dialects override individual type families and delegate the rest to
// GenericMarshaller.
type Marshaller interface {
	Marshal(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error)
}

// MarshalFunc adapts a function to the Marshaller interface.
type MarshalFunc func(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error)

// Marshal calls f.
func (f MarshalFunc) Marshal(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error) {
	return f(pos, declared, cur)
}

// GenericMarshaller implements the dialect-independent decoding rules.
type GenericMarshaller struct{}

// Marshal decodes the column at pos according to its declared type family.
func (GenericMarshaller) Marshal(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error) {
	switch {
	case declared == core.TypeNull:
		return core.NullValue(), nil

	case declared.IsBoolean():
		v, err := cur.Bool(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		return nullable(v.Bool, v.Valid), nil

	case declared.IsInteger():
		v, err := cur.Int64(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		return nullable(v.Int64, v.Valid), nil

	case declared == core.TypeFloat || declared == core.TypeDouble:
		v, err := cur.Float64(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		return nullable(v.Float64, v.Valid), nil

	case declared == core.TypeBinary || declared == core.TypeBlob:
		b, err := cur.Bytes(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		return nullable(b, b != nil), nil

	case declared == core.TypeDate || declared == core.TypeTimestamp:
		raw, err := cur.Value(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		if t, ok := raw.(time.Time); ok {
			return core.ValueOf(t), nil
		}
		return marshalString(pos, declared, cur)

	case declared == core.TypeUnknown:
		raw, err := cur.Value(pos)
		if err != nil {
			return core.MarshalledValue{}, MarshalError(pos, declared, err)
		}
		switch v := raw.(type) {
		case nil:
			return core.NullValue(), nil
		case []byte:
			return core.ValueOf(string(v)), nil
		default:
			return core.ValueOf(v), nil
		}

	default:
		// decimals keep their exact text form
		return marshalString(pos, declared, cur)
	}
}

func marshalString(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error) {
	v, err := cur.String(pos)
	if err != nil {
		return core.MarshalledValue{}, MarshalError(pos, declared, err)
	}
	return nullable(v.String, v.Valid), nil
}

func nullable(v any, valid bool) core.MarshalledValue {
	if !valid {
		return core.NullValue()
	}
	return core.ValueOf(v)
}

// MarshalError wraps a column read failure.
func MarshalError(pos int, declared core.SQLType, err error) error {
	return core.NewReadError("marshal", fmt.Sprintf("column %d (%s)", pos, declared), err)
}

// MarshalRow decodes every column of the cursor's current row.
func MarshalRow(m Marshaller, cur core.RowCursor) ([]core.MarshalledValue, error) {
	cols := cur.Columns()
	values := make([]core.MarshalledValue, len(cols))
	for i := range cols {
		v, err := m.Marshal(i, cur.DeclaredType(i), cur)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
