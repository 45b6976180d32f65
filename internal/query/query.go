// Package query turns loosely typed request parameters into the text
// forms the koala engine expects on the wire.
package query

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// Stringify converts a parameter value to the text the engine matches
// rules against. Booleans follow the engine's convention of "1" for true
// and the empty string for false. Pointers are followed; a nil pointer is
// the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		if isNilPointer(val) {
			return ""
		}
		return val.String()
	default:
		rv := reflect.ValueOf(val)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return ""
			}
			return Stringify(rv.Elem().Interface())
		}
		return fmt.Sprint(val)
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Values stringifies every entry of params into url.Values.
func Values(params map[string]any) url.Values {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, Stringify(v))
	}
	return values
}

// Encode serializes params as a query string. Keys are sorted.
func Encode(params map[string]any) string {
	return Values(params).Encode()
}

// Job is one entry of the batch list sent to /multi/browse.
type Job struct {
	ID  string `json:"Id"`
	Arg string `json:"Arg"`
}

// NewJobs assigns each parameter set its positional index as ID and an
// escaped query string as Arg. The engine unescapes Arg once before
// splitting it on '&' and '='.
func NewJobs(params []map[string]any) []Job {
	jobs := make([]Job, 0, len(params))
	for i, p := range params {
		jobs = append(jobs, Job{
			ID:  strconv.Itoa(i),
			Arg: url.QueryEscape(Encode(p)),
		})
	}
	return jobs
}

// EncodeJobs returns the JSON document carried in the argsJson parameter.
func EncodeJobs(params []map[string]any) (string, error) {
	data, err := json.Marshal(NewJobs(params))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
