package obs

import (
	"context"
	"log"
	"time"

	"delivery-insertion-planner/internal/platform/metrics"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	JobIDKey     ctxKey = "job_id"
)

// WithRequestID tags ctx with the operator request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithJobID tags ctx with the optimization job id so adapter calls made on
// behalf of a job log it.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, JobIDKey, id)
}

// RequestID returns the request id on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of op name and records it in the operation
// histogram. Use as: defer obs.Time(ctx, "op")(&err).
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)
	jobID, _ := ctx.Value(JobIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		result := "ok"
		if errp != nil && *errp != nil {
			result = "error"
		}
		metrics.OperationDuration.WithLabelValues(name, result).Observe(dur.Seconds())

		prefix := "req_id=" + reqID
		if jobID != "" {
			prefix += " job_id=" + jobID
		}
		if result == "error" {
			log.Printf("%s op=%s dur=%dms err=%v", prefix, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("%s op=%s dur=%dms", prefix, name, dur.Milliseconds())
	}
}
