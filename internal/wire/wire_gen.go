// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"context"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/detector"
	"github.com/sevigo/hybrid-warden/internal/jobs"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/rules"
	"github.com/sevigo/hybrid-warden/internal/server"
	"github.com/sevigo/hybrid-warden/internal/server/handler"
)

// InitializeApp wires the webhook server and its review pipeline.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	config, err := provideServerConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := provideSlogLogger(config)
	table := rules.DefaultTable()
	analyzer := rules.NewAnalyzer(table)
	model, err := provideModel(config, logger)
	if err != nil {
		return nil, nil, err
	}
	engine := detector.NewEngine(analyzer, model)
	clientFactory := provideClientFactory(config, logger)
	slackConfig := provideSlackConfig(config)
	notifier := notify.NewNotifier(slackConfig, logger)
	recorder, cleanup, err := provideRecorder(config, logger)
	if err != nil {
		return nil, nil, err
	}
	registry := provideRegistry()
	metrics := provideMetrics(registry)
	reviewJob := jobs.NewReviewJob(config, engine, clientFactory, notifier, recorder, metrics, logger)
	dispatcher := provideDispatcher(config, reviewJob, logger)
	webhookHandler := handler.NewWebhookHandler(config, dispatcher, metrics, logger)
	router := provideRouter(webhookHandler, registry)
	srv := server.NewServer(ctx, config, router, logger)
	application := app.NewApp(ctx, config, srv, dispatcher, logger)
	return application, func() {
		cleanup()
	}, nil
}

// InitializeCLI wires the dependencies of the command line tools.
func InitializeCLI(ctx context.Context) (*app.CLI, error) {
	config, err := provideCLIConfig()
	if err != nil {
		return nil, err
	}
	logger := provideSlogLogger(config)
	table := rules.DefaultTable()
	analyzer := rules.NewAnalyzer(table)
	model, err := provideModel(config, logger)
	if err != nil {
		return nil, err
	}
	engine := detector.NewEngine(analyzer, model)
	slackConfig := provideSlackConfig(config)
	notifier := notify.NewNotifier(slackConfig, logger)
	cli := app.NewCLI(config, logger, engine, notifier)
	return cli, nil
}
