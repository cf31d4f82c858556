package djson

import (
	"bytes"
	"encoding/json"
)

// Value represents a JSON value decoded by the encoding/json package:
// objects are maps, arrays are slices, numbers are json.Number values so
// that 64 bit integers survive decoding.
type Value = interface{}

func Decode(data []byte) (Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value Value
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	return value, nil
}

func IsNull(v Value) bool {
	return v == nil
}

func IsNumber(v Value) bool {
	_, ok := v.(json.Number)
	return ok
}

func IsString(v Value) bool {
	_, ok := v.(string)
	return ok
}

func IsBoolean(v Value) bool {
	_, ok := v.(bool)
	return ok
}

func IsArray(v Value) bool {
	_, ok := v.([]Value)
	return ok
}

func IsObject(v Value) bool {
	_, ok := v.(map[string]Value)
	return ok
}

func AsNumber(v Value) float64 {
	f, err := v.(json.Number).Float64()
	if err != nil {
		panic(err)
	}

	return f
}

func AsInt64(v Value) (int64, error) {
	return v.(json.Number).Int64()
}

func AsString(v Value) string {
	return v.(string)
}

func AsBoolean(v Value) bool {
	return v.(bool)
}

func AsArray(v Value) []Value {
	return v.([]Value)
}

func AsObject(v Value) map[string]Value {
	return v.(map[string]Value)
}

func Equal(v1, v2 Value) bool {
	switch {
	case IsNull(v1) && IsNull(v2):
		return true

	case IsNumber(v1) && IsNumber(v2):
		return AsNumber(v1) == AsNumber(v2)

	case IsString(v1) && IsString(v2):
		return AsString(v1) == AsString(v2)

	case IsBoolean(v1) && IsBoolean(v2):
		return AsBoolean(v1) == AsBoolean(v2)

	case IsArray(v1) && IsArray(v2):
		a1 := AsArray(v1)
		a2 := AsArray(v2)

		if len(a1) != len(a2) {
			return false
		}

		for i := 0; i < len(a1); i++ {
			if !Equal(a1[i], a2[i]) {
				return false
			}
		}

		return true

	case IsObject(v1) && IsObject(v2):
		obj1 := AsObject(v1)
		obj2 := AsObject(v2)

		for key, value1 := range obj1 {
			value2, found := obj2[key]
			if !found || !Equal(value1, value2) {
				return false
			}
		}

		for key := range obj2 {
			if _, found := obj1[key]; !found {
				return false
			}
		}

		return true
	}

	return false
}
