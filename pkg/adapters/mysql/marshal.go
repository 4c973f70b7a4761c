package mysql

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
	"github.com/leapstack-labs/leapmeta/pkg/core"
)

// Marshaller decodes MySQL column values. BOOLEAN and BIT columns are
// returned as int64 1 or 0; every other type goes to Fallback.
type Marshaller struct {
	// Fallback decodes non-boolean types. Nil means adapter.GenericMarshaller.
	Fallback adapter.Marshaller
}

// Marshal decodes the column at pos.
func (m Marshaller) Marshal(pos int, declared core.SQLType, cur core.RowCursor) (core.MarshalledValue, error) {
	if !declared.IsBoolean() {
		return m.fallback().Marshal(pos, declared, cur)
	}

	raw, err := cur.Value(pos)
	if err != nil {
		return core.MarshalledValue{}, adapter.MarshalError(pos, declared, err)
	}
	set, valid, err := bitValue(declared, raw)
	if err != nil {
		return core.MarshalledValue{}, adapter.MarshalError(pos, declared, err)
	}

	switch {
	case !valid:
		return core.NullValue(), nil
	case set:
		return core.ValueOf(int64(1)), nil
	default:
		return core.ValueOf(int64(0)), nil
	}
}

func (m Marshaller) fallback() adapter.Marshaller {
	if m.Fallback == nil {
		return adapter.GenericMarshaller{}
	}
	return m.Fallback
}

// bitValue interprets a raw driver value as a boolean. valid is false for NULL.
// BIT payloads arrive as big-endian bytes and are set when any bit is set.
func bitValue(declared core.SQLType, raw any) (set, valid bool, err error) {
	switch v := raw.(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	case int64:
		return v != 0, true, nil
	case []byte:
		if declared == core.TypeBoolean {
			if b, err := strconv.ParseBool(string(v)); err == nil {
				return b, true, nil
			}
		}
		for _, c := range v {
			if c != 0 {
				return true, true, nil
			}
		}
		return false, true, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false, fmt.Errorf("invalid boolean %q", v)
		}
		return b, true, nil
	default:
		return false, false, fmt.Errorf("cannot read %T as boolean", raw)
	}
}
