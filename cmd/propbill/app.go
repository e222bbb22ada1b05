package main

import (
	"context"

	"github.com/smallbiznis/propbill/internal/bootstrap"
	"go.uber.org/fx"
)

// runTask starts a short-lived app, runs fn, and stops the app again.
func runTask(ctx context.Context, fn func(context.Context) error, opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{bootstrap.Core(), fx.NopLogger}, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx)
}
