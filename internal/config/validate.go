package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidateDetector checks the settings every entry point needs.
func (c *Config) ValidateDetector() error {
	var errs []error
	d := c.Detector

	if d.ModelPath == "" {
		errs = append(errs, errors.New("detector.model_path must be set"))
	}
	if d.Threshold <= 0 || d.Threshold > 1 {
		errs = append(errs, fmt.Errorf("detector.threshold must be in (0,1], got %v", d.Threshold))
	}
	if len(d.Extensions) == 0 {
		errs = append(errs, errors.New("detector.extensions must not be empty"))
	}
	for _, ext := range d.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("detector.extensions entry %q must start with a dot", ext))
		}
	}
	if d.FileConcurrency < 1 {
		errs = append(errs, errors.New("detector.file_concurrency must be at least 1"))
	}
	if d.CollaboratorTimeout <= 0 {
		errs = append(errs, errors.New("detector.collaborator_timeout must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateForServer checks everything the webhook server requires.
func (c *Config) ValidateForServer() error {
	errs := []error{c.ValidateDetector()}

	if c.GitHub.WebhookSecret == "" {
		errs = append(errs, errors.New("github.webhook_secret must be set"))
	}
	if !c.GitHub.AppConfigured() && c.GitHub.Token == "" {
		errs = append(errs, errors.New("either github.app_id with github.private_key_path or github.token must be set"))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxWorkers < 1 {
		errs = append(errs, errors.New("server.max_workers must be at least 1"))
	}
	if c.Server.QueueSize < 1 {
		errs = append(errs, errors.New("server.queue_size must be at least 1"))
	}
	return errors.Join(errs...)
}

// ValidateForCLI checks what the local commands require. GitHub access is checked
// by the commands that need it.
func (c *Config) ValidateForCLI() error {
	return errors.Join(c.ValidateDetector(), c.Database.Validate())
}

// Validate checks the database driver name.
func (c DBConfig) Validate() error {
	switch c.Driver {
	case "", DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Driver)
	}
}
