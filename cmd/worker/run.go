package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type runner interface {
	Run(ctx context.Context) error
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

// runAll runs every runner until ctx is done. The first one to fail
// cancels the others and its error is returned.
func runAll(ctx context.Context, runners ...runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error { return r.Run(ctx) })
	}
	return g.Wait()
}
