package retry

import "context"

// retrierKey is the key for the retrier in the context.
type retrierKey struct{}

// ToContext returns a new context carrying the given retrier.
func ToContext(ctx context.Context, retrier Retrier) context.Context {
	return context.WithValue(ctx, retrierKey{}, retrier)
}

// FromContext gets the retrier from the context, or nil if none is set.
func FromContext(ctx context.Context) Retrier {
	retrier, ok := ctx.Value(retrierKey{}).(Retrier)
	if !ok {
		return nil
	}

	return retrier
}

// FromContextOrNoop returns the retrier from the context, or a NoopRetrier
// if none is set, so retry logic always has a policy to consult.
func FromContextOrNoop(ctx context.Context) Retrier {
	retrier := FromContext(ctx)
	if retrier != nil {
		return retrier
	}

	return &NoopRetrier{}
}
