package otelhelper

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorCodeKey holds the service error code of a failed span, when one is known.
const ErrorCodeKey = "pathway.error.code"

// coder is implemented by errors that carry a machine readable code.
type coder interface {
	ErrorCode() string
}

// End finishes span, marking it failed when *errp is set. It is meant to be deferred
// with a pointer to a named error result.
func End(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		SetError(span, *errp)
	}

	span.End()
}

// SetError records err on span. Nil errors are ignored.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}

	var c coder
	if errors.As(err, &c) && c.ErrorCode() != "" {
		span.SetAttributes(attribute.String(ErrorCodeKey, c.ErrorCode()))
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
