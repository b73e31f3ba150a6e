package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of request-scoped values set by the API middleware.
type ContextKey string

const (
	// LearnerIDContextKey holds the authenticated learner's uuid.UUID.
	LearnerIDContextKey ContextKey = "learner_id"

	// TraceIDKey holds the request trace id.
	TraceIDKey ContextKey = "trace_id"
)

// TraceIDHeader carries the trace id in requests and responses.
const TraceIDHeader = "X-Trace-ID"

// maxTraceIDLength bounds trace ids accepted from clients.
const maxTraceIDLength = 64

// WithLearnerID returns a copy of ctx carrying the learner id.
func WithLearnerID(ctx context.Context, learnerID uuid.UUID) context.Context {
	return context.WithValue(ctx, LearnerIDContextKey, learnerID)
}

// LearnerID returns the authenticated learner id. The second result is false
// when the context carries none or carries uuid.Nil.
func LearnerID(ctx context.Context) (uuid.UUID, bool) {
	learnerID, ok := ctx.Value(LearnerIDContextKey).(uuid.UUID)
	if !ok || learnerID == uuid.Nil {
		return uuid.Nil, false
	}
	return learnerID, true
}

// WithTraceID returns a copy of ctx carrying traceID. An empty or malformed
// traceID is replaced with a freshly generated one.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if !validTraceID(traceID) {
		traceID = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID returns the trace id from ctx, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// NewTraceID returns a random 32 character hex trace id.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validTraceID(s string) bool {
	if s == "" || len(s) > maxTraceIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
