package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFeatureValue is returned when a value that must be hashed or
// compared as a feature is not a scalar (string, number, bool or nil).
var ErrInvalidFeatureValue = errors.New("invalid feature value")

// #region coercion

// Stringify coerces a scalar into its feature string. Booleans follow the
// "1"/"" convention, nil becomes "", floats use the shortest exact decimal.
func Stringify(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		if x {
			return "1", nil
		}
		return "", nil
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidFeatureValue, v)
	}
}

// IsScalar reports whether v can be coerced by Stringify.
func IsScalar(v any) bool {
	_, err := Stringify(v)
	return err == nil
}

// AsFloat returns v as a float64 when v is a Go numeric type or json.Number.
// Strings are not parsed.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// looseEqual compares two values by their feature strings, falling back to
// fmt formatting for non-scalars.
func looseEqual(a, b any) bool {
	sa, errA := Stringify(a)
	sb, errB := Stringify(b)
	if errA != nil || errB != nil {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return sa == sb
}

// #endregion coercion
