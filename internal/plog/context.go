package plog

import (
	"context"

	//nolint:depguard // Wrapper for Zap
	"go.uber.org/zap"
)

type loggerContextKey struct{}

// ContextWithLogger attaches a logger configured from the environment.
func ContextWithLogger(ctx context.Context, opts ...LoggerOption) context.Context {
	opts = append([]LoggerOption{
		WithLevelFromEnvironment(),
		WithFormatFromEnvironment(),
		WithColor(true),
	}, opts...)
	lgr, err := NewLogger(opts...)
	if err != nil {
		panic(err)
	}
	return WithLogger(ctx, lgr)
}

func WithLogger(ctx context.Context, lgr *PipelineLogger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, lgr)
}

// Logger returns the context logger, or a no-op logger when none is set.
func Logger(ctx context.Context) *PipelineLogger {
	if lgr, ok := ctx.Value(loggerContextKey{}).(*PipelineLogger); ok {
		return lgr
	}
	return nop
}

var nop = &PipelineLogger{Zap: zap.NewNop(), Sugar: zap.NewNop().Sugar()}
