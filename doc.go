// Package koala is a client for the koala rule engine, a frequency
// control service answering "may this action proceed?" over HTTP.
//
// Each Client method sends a single GET request to the engine and maps
// the JSON answer onto a small result type:
//
//   - Check         GET /rule/browse           first matching rule
//   - CheckComplete GET /rule/browse_complete  every matching rule
//   - MultiCheck    GET /multi/browse          many checks, one request
//   - Write         GET /rule/update           count the action
//   - MonitorAlive  GET /monitor/alive         engine + storage probe
//
// Parameter values of any scalar type are sent as text. There is no
// retry, pooling or caching: a call either completes within the timeout
// (3s by default) or fails. Failed calls return an empty result together
// with a *ClientError; IsTransport tells those apart from configuration
// errors.
//
// Typical usage:
//
//	client, err := koala.New(koala.Config{Host: "127.0.0.1", Port: 9981})
//	if err != nil {
//	    return err
//	}
//	params := koala.Params{"action": "submit", "qid": 123, "ip": "10.16.1.1"}
//	res, err := client.Check(ctx, params)
//	if err == nil && !res.Hit() {
//	    _, err = client.Write(ctx, params)
//	}
//
// Structured logging goes through Logger (apex/log backed via
// NewApexLogger or WithSimpleLogger) and Prometheus metrics are opt-in via
// WithMetrics.
package koala
