//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"github.com/sevigo/hybrid-warden/internal/app"
)

// InitializeApp wires the webhook server and its review pipeline.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(AppSet)
	return &app.App{}, nil, nil
}

// InitializeCLI wires the dependencies of the command line tools.
func InitializeCLI(ctx context.Context) (*app.CLI, error) {
	wire.Build(CLISet)
	return &app.CLI{}, nil
}
