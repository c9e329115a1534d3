// Package tracing holds the opencensus helpers shared by the span-wrapped
// orchestration functions in beacon-chain/core.
package tracing

import "go.opencensus.io/trace"

// AnnotateError marks span as failed with err's message. No-op on nil err.
func AnnotateError(span *trace.Span, err error) {
	if err == nil {
		return
	}
	span.AddAttributes(trace.BoolAttribute("error", true))
	span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
}
