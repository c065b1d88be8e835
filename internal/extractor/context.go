package extractor

import "context"

type runnerKey struct{}

// WithRunner returns a context carrying runner. Code that would start the
// extraction tool uses this runner instead.
func WithRunner(ctx context.Context, runner Runner) context.Context {
	return context.WithValue(ctx, runnerKey{}, runner)
}

// RunnerFromContext returns the runner stored by WithRunner.
func RunnerFromContext(ctx context.Context) (Runner, bool) {
	r, ok := ctx.Value(runnerKey{}).(Runner)
	return r, ok && r != nil
}
