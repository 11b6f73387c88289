package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sqldef/revdef/util"
)

type ValueType int

const (
	// The zero ValueType marks a value of unrecognized shape. It escapes to "".
	ValueTypeInvalid = ValueType(iota)
	ValueTypeNull
	ValueTypeBool
	ValueTypeInt
	ValueTypeFloat
	ValueTypeStr
	ValueTypeArray
	ValueTypeRaw
	ValueTypeUint
)

// Value is a literal to be embedded in generated SQL.
type Value struct {
	valueType ValueType

	// ValueType-specific
	bitVal   bool    // ValueTypeBool
	intVal   int64   // ValueTypeInt
	uintVal  uint64  // ValueTypeUint
	floatVal float64 // ValueTypeFloat
	strVal   string  // ValueTypeStr, ValueTypeRaw
	arrayVal []Value // ValueTypeArray
}

func Null() Value {
	return Value{valueType: ValueTypeNull}
}

func Bool(b bool) Value {
	return Value{valueType: ValueTypeBool, bitVal: b}
}

func Int(i int64) Value {
	return Value{valueType: ValueTypeInt, intVal: i}
}

// Uint holds integers above math.MaxInt64. Smaller ones are better held by Int.
func Uint(u uint64) Value {
	return Value{valueType: ValueTypeUint, uintVal: u}
}

func Float(f float64) Value {
	return Value{valueType: ValueTypeFloat, floatVal: f}
}

func String(s string) Value {
	return Value{valueType: ValueTypeStr, strVal: s}
}

func Array(values ...Value) Value {
	return Value{valueType: ValueTypeArray, arrayVal: values}
}

// Raw wraps SQL that is emitted verbatim, e.g. a function call used as a default.
// It is never escaped, so it must not carry untrusted input.
func Raw(sql string) Value {
	return Value{valueType: ValueTypeRaw, strVal: sql}
}

func (v Value) Type() ValueType {
	return v.valueType
}

// ValueOf converts plain data, as produced by a YAML or JSON decoder, into a Value.
// A map of the form {"raw": "<sql>"} becomes a raw literal. Anything it doesn't
// recognize becomes the zero Value.
func ValueOf(x any) Value {
	switch x := x.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case *Value:
		if x == nil {
			return Null()
		}
		return *x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return uintValue(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case []any:
		values := make([]Value, len(x))
		for i, elem := range x {
			values[i] = ValueOf(elem)
		}
		return Array(values...)
	case map[string]any:
		if raw, ok := x["raw"].(string); ok && len(x) == 1 {
			return Raw(raw)
		}
	}
	return Value{}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Uint(u)
	}
	return Int(int64(u))
}

// UnmarshalYAML decodes any YAML node through ValueOf.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var x any
	if err := unmarshal(&x); err != nil {
		return err
	}
	*v = ValueOf(x)
	return nil
}

// Escape renders a value as a SQL literal. Strings are dollar-quoted with a tag
// that doesn't occur in the string, so arbitrary content is safe.
func Escape(v Value) string {
	switch v.valueType {
	case ValueTypeArray:
		return "ARRAY" + escapeArrayElements(v.arrayVal)
	default:
		return escapeScalar(v)
	}
}

func escapeScalar(v Value) string {
	switch v.valueType {
	case ValueTypeNull:
		return "NULL"
	case ValueTypeBool:
		return strconv.FormatBool(v.bitVal)
	case ValueTypeInt:
		return strconv.FormatInt(v.intVal, 10)
	case ValueTypeUint:
		return strconv.FormatUint(v.uintVal, 10)
	case ValueTypeFloat:
		return escapeFloat(v.floatVal)
	case ValueTypeStr:
		return DollarQuote(v.strVal)
	case ValueTypeRaw:
		return v.strVal
	default:
		return ""
	}
}

// Nested arrays are written as bare brackets; only the outermost gets ARRAY.
func escapeArrayElements(values []Value) string {
	elems := util.TransformSlice(values, func(elem Value) string {
		if elem.valueType == ValueTypeArray {
			return escapeArrayElements(elem.arrayVal)
		}
		return escapeScalar(elem)
	})
	return "[" + strings.Join(elems, ",") + "]"
}

// DollarQuote wraps s in the first $pgN$ tag that is not a substring of s.
func DollarQuote(s string) string {
	var tag string
	for i := 1; ; i++ {
		tag = fmt.Sprintf("$pg%d$", i)
		if !strings.Contains(s, tag) {
			break
		}
	}
	return tag + s + tag
}

// NaN and the infinities have no numeric literal, so they are written as typed strings.
func escapeFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'::float8"
	case math.IsInf(f, 1):
		return "'Infinity'::float8"
	case math.IsInf(f, -1):
		return "'-Infinity'::float8"
	default:
		return formatNumber(f)
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Interpolate replaces every {key} placeholder in sql with the escaped value of args[key].
func Interpolate(sql string, args map[string]Value) string {
	for k, v := range util.CanonicalMapIter(args) {
		sql = strings.ReplaceAll(sql, "{"+k+"}", Escape(v))
	}
	return sql
}
