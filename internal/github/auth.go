// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
)

// ErrNoCredentials is returned when neither App credentials nor a token are configured.
var ErrNoCredentials = errors.New("no GitHub credentials configured")

// ClientFactory hands out a Client authenticated for a given event.
//
//go:generate mockgen -destination=../mocks/mock_client_factory.go -package=mocks . ClientFactory
type ClientFactory interface {
	ForEvent(ctx context.Context, event *core.ReviewEvent) (Client, error)
}

type clientFactory struct {
	cfg    config.GitHubConfig
	logger *slog.Logger
}

// NewClientFactory returns a factory that prefers the GitHub App installation of an
// event and falls back to the configured personal access token.
func NewClientFactory(cfg config.GitHubConfig, logger *slog.Logger) ClientFactory {
	return &clientFactory{cfg: cfg, logger: logger}
}

func (f *clientFactory) ForEvent(ctx context.Context, event *core.ReviewEvent) (Client, error) {
	if event.InstallationID > 0 && f.cfg.AppConfigured() {
		return CreateInstallationClient(ctx, f.cfg, event.InstallationID, f.logger)
	}
	if f.cfg.Token != "" {
		return NewPATClient(ctx, f.cfg.Token, f.logger), nil
	}
	return nil, ErrNoCredentials
}

// StaticClientFactory always returns the same client. The CLI uses it with a PAT client.
type StaticClientFactory struct {
	Client Client
}

// ForEvent returns the fixed client, or ErrNoCredentials when none is set.
func (f StaticClientFactory) ForEvent(context.Context, *core.ReviewEvent) (Client, error) {
	if f.Client == nil {
		return nil, ErrNoCredentials
	}
	return f.Client, nil
}

// CreateInstallationClient creates a GitHub client that is authenticated as a specific application installation.
func CreateInstallationClient(ctx context.Context, cfg config.GitHubConfig, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("Creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.PrivateKeyPath, err)
	}

	// The apps transport signs JWTs for the App API, which mints installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	logger.Debug("installation token created", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	return NewGitHubClient(github.NewClient(tc), logger), nil
}
