package root

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/heiyeluren/koala"
)

// ParseParams turns KEY=VALUE arguments into request params. A later
// duplicate key replaces an earlier one.
func ParseParams(args []string) (koala.Params, error) {
	params := make(koala.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", arg)
		}
		params[key] = value
	}
	return params, nil
}

// ParseJob turns a query string such as "qid=1&ip=10.0.0.1" into the
// params of one multi-check job. Repeated keys keep their first value.
func ParseJob(raw string) (koala.Params, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("parse job %q: %w", raw, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("job %q has no params", raw)
	}

	params := make(koala.Params, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params, nil
}
