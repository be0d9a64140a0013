package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apierrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/observability"
	"github.com/kbukum/apikit/request"
)

// Logging logs each execution at debug level, and failures at warn.
func Logging(log *logger.Logger) Decorator {
	if log == nil {
		log = logger.Get("handler")
	}
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := inner.Execute(ctx, req)
			fields := logger.MergeWithDuration(logger.Fields(
				logger.FieldMethod, req.Method(),
				logger.FieldURL, req.URL().Redacted(),
			), time.Since(start))
			if err != nil {
				log.Warn("request failed", logger.MergeWithError(fields, err))
				return nil, err
			}
			fields[logger.FieldStatus] = resp.StatusCode
			log.Debug("request completed", fields)
			return resp, nil
		})
	}
}

// Tracing wraps each execution in a client span. A nil tracer uses the
// global apikit tracer.
func Tracing(tracer trace.Tracer) Decorator {
	if tracer == nil {
		tracer = observability.Tracer(observability.TracerName)
	}
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			u := req.URL()
			ctx, span := tracer.Start(ctx, observability.SpanSend,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String(observability.AttrMethod, req.Method()),
					attribute.String(observability.AttrURL, u.Redacted()),
					attribute.String(observability.AttrHost, u.Host),
				),
			)
			resp, err := inner.Execute(ctx, req)
			if err != nil {
				if kind := apierrors.KindOf(err); kind != "" {
					span.SetAttributes(attribute.String(observability.AttrErrorKind, string(kind)))
				}
			} else {
				span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
			}
			observability.EndSpan(span, err)
			return resp, err
		})
	}
}

// Metrics records each execution on prom and, when non-nil, on the
// OpenTelemetry instruments in otelMetrics.
func Metrics(prom *observability.PromCollector, otelMetrics *observability.Metrics) Decorator {
	return func(inner Handler) Handler {
		return Func(func(ctx context.Context, req *request.Request) (*http.Response, error) {
			method, host := req.Method(), req.URL().Host
			prom.SendStarted(method, host)
			if otelMetrics != nil {
				otelMetrics.RecordSendStart(ctx)
			}

			start := time.Now()
			resp, err := inner.Execute(ctx, req)
			elapsed := time.Since(start)

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			if s := StatusOf(err); s != 0 {
				status = s
			}
			prom.SendFinished(method, host, status, elapsed)
			if err != nil {
				prom.Error(string(apierrors.KindOf(err)), method, host)
			}
			if otelMetrics != nil {
				otelMetrics.RecordSendEnd(ctx, method, host, strconv.Itoa(status), elapsed)
				if err != nil {
					otelMetrics.RecordError(ctx, string(apierrors.KindOf(err)), "handler")
				}
			}
			return resp, err
		})
	}
}
