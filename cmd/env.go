package cmd

import (
	"context"
	"errors"
)

// Env is the environment a command runs in, set up from flags before it runs.
type Env struct {
	metrics  bool
	shutdown []func(context.Context) error
}

// WithEnv sets a new Env in the given context.
func WithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &Env{})
}

// GetEnv reads the Env from the context.
func GetEnv(ctx context.Context) *Env {
	env, ok := ctx.Value(envKey{}).(*Env)
	if !ok {
		panic("cmd: env is not set")
	}
	return env
}

// MetricsEnabled reports whether metrics are exported.
func (env *Env) MetricsEnabled() bool {
	return env.metrics
}

// OnShutdown registers fn to be called by Shutdown.
func (env *Env) OnShutdown(fn func(context.Context) error) {
	env.shutdown = append(env.shutdown, fn)
}

// Shutdown flushes and stops everything set up for the command, last registered first.
func (env *Env) Shutdown(ctx context.Context) error {
	var err error
	for i := len(env.shutdown) - 1; i >= 0; i-- {
		err = errors.Join(err, env.shutdown[i](ctx))
	}
	env.shutdown = nil
	return err
}

type envKey struct{}
