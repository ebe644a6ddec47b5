// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-github/v73/github"
)

// Pull request actions that trigger an analysis. "synchronize" is GitHub's
// name for new commits pushed to the head branch.
const (
	ActionOpened      = "opened"
	ActionReopened    = "reopened"
	ActionSynchronize = "synchronize"
)

var (
	// ErrUntrackedAction marks a pull request event whose action is not analyzed.
	ErrUntrackedAction = errors.New("pull request action is not tracked")
	// ErrNotPullRequest marks a delivery of any other event type.
	ErrNotPullRequest = errors.New("event is not a pull request")
	// ErrInvalidEvent marks an event that is missing required data.
	ErrInvalidEvent = errors.New("invalid review event")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ReviewEvent is the internal, validated view of a pull request webhook.
type ReviewEvent struct {
	DeliveryID string `validate:"required"`
	Action     string `validate:"required,oneof=opened reopened synchronize"`

	RepoOwner    string `validate:"required"`
	RepoName     string `validate:"required"`
	RepoFullName string `validate:"required"`

	PRNumber int    `validate:"gt=0"`
	PRTitle  string
	HeadSHA  string `validate:"required,hexadecimal"`
	Sender   string

	// InstallationID is zero when the event did not come through a GitHub App.
	InstallationID int64 `validate:"gte=0"`
}

// Validate checks that the event carries everything the pipeline needs.
func (e *ReviewEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidEvent)
	}
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// IsTrackedAction reports whether a pull request action triggers an analysis.
func IsTrackedAction(action string) bool {
	switch action {
	case ActionOpened, ActionReopened, ActionSynchronize:
		return true
	default:
		return false
	}
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the application's
// internal ReviewEvent. It is the anti-corruption layer between the webhook payload and
// the review job: untracked actions yield ErrUntrackedAction, incomplete payloads yield
// ErrInvalidEvent.
func EventFromPullRequest(event *github.PullRequestEvent, deliveryID string) (*ReviewEvent, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: pull request event is nil", ErrInvalidEvent)
	}

	action := event.GetAction()
	if !IsTrackedAction(action) {
		return nil, fmt.Errorf("%w: %q", ErrUntrackedAction, action)
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil {
		return nil, fmt.Errorf("%w: repository or owner information is missing", ErrInvalidEvent)
	}

	number := event.GetNumber()
	if number == 0 {
		number = event.GetPullRequest().GetNumber()
	}

	reviewEvent := &ReviewEvent{
		DeliveryID:     deliveryID,
		Action:         action,
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		PRNumber:       number,
		PRTitle:        event.GetPullRequest().GetTitle(),
		HeadSHA:        event.GetPullRequest().GetHead().GetSHA(),
		Sender:         event.GetSender().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}
	if err := reviewEvent.Validate(); err != nil {
		return nil, err
	}
	return reviewEvent, nil
}
