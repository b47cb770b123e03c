// Package mocks provides an Otel that records nothing, for tests that do not
// assert on tracing.
package mocks

import (
	"context"

	"driveease/infras/otel"
)

type discardOtel struct{}

func (discardOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (discardOtel) Shutdown(context.Context) error {
	return nil
}

func NewOtel() otel.Otel {
	return discardOtel{}
}
