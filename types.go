package koala

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Params are the rule-matching key/value pairs of a request. Values are
// converted to text before they are sent.
type Params map[string]any

// Result is the outcome of a rule check. A nil field was absent from the
// engine's answer.
type Result struct {
	ErrNo    *int    `json:"errno"`
	ErrMsg   *string `json:"errmsg"`
	Code     *int    `json:"code"`
	VcodeLen *int    `json:"vcode_len"`
}

// Empty reports whether no field was set by the engine.
func (r Result) Empty() bool {
	return r.ErrNo == nil && r.ErrMsg == nil && r.Code == nil && r.VcodeLen == nil
}

// Hit reports whether a rule matched, i.e. Code is set and non-zero.
func (r Result) Hit() bool {
	return r.Code != nil && *r.Code != 0
}

// WriteResult is the outcome of Write.
type WriteResult struct {
	ErrNo  *int    `json:"errno"`
	ErrMsg *string `json:"errmsg"`
}

// Empty reports whether no field was set by the engine.
func (r WriteResult) Empty() bool {
	return r.ErrNo == nil && r.ErrMsg == nil
}

// checkResponse is the engine's browse answer. Fields are decoded one by
// one, so a field of an unexpected type is dropped without losing the
// others.
type checkResponse struct {
	ErrNo     looseInt    `json:"Err_no"`
	StrReason looseString `json:"Str_reason"`
	RetCode   looseInt    `json:"Ret_code"`
	VcodeLen  looseInt    `json:"Vcode_len"`
}

func (r checkResponse) result() Result {
	return Result{
		ErrNo:    r.ErrNo.v,
		ErrMsg:   r.StrReason.v,
		Code:     r.RetCode.v,
		VcodeLen: r.VcodeLen.v,
	}
}

// updateResponse is the engine's update answer.
type updateResponse struct {
	ErrNo  looseInt    `json:"err_no"`
	ErrMsg looseString `json:"err_msg"`
}

func (r updateResponse) result() WriteResult {
	return WriteResult{ErrNo: r.ErrNo.v, ErrMsg: r.ErrMsg.v}
}

// looseInt accepts a JSON number or a numeric string. Anything else
// leaves it unset.
type looseInt struct {
	v *int
}

func (n *looseInt) UnmarshalJSON(data []byte) error {
	n.v = nil
	text := string(bytes.TrimSpace(data))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}

	if i, err := strconv.Atoi(text); err == nil {
		n.v = &i
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) &&
		f >= math.MinInt32 && f <= math.MaxInt32 {
		i := int(f)
		n.v = &i
	}
	return nil
}

// looseString accepts a JSON string, or the text of a number or boolean.
// Objects, arrays and null leave it unset.
type looseString struct {
	v *string
}

func (s *looseString) UnmarshalJSON(data []byte) error {
	s.v = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err == nil {
			s.v = &str
		}
	case 'n', '{', '[':
	default:
		str := string(data)
		s.v = &str
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// CallOption adjusts a single Check or CheckComplete call.
type CallOption func(*callOptions)

type callOptions struct {
	writeThrough bool
}

// WriteThrough asks the engine to apply the update step as part of the
// check, as if Write had been called with the same params.
func WriteThrough() CallOption {
	return func(o *callOptions) {
		o.writeThrough = true
	}
}

// Middleware represents a middleware function
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
