// Package pipeline orchestrates a single fetch-extract-validate-deliver
// pass over the lottery page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stefan/toto-notifier/internal/jackpot"
	"github.com/stefan/toto-notifier/internal/retry"
)

// MessageTemplate embeds the canonical jackpot value into the delivered text.
const MessageTemplate = "💰 The current Toto jackpot is: *%s*"

// Stage identifies where in a run a failure occurred.
type Stage string

const (
	StageFetch    Stage = "fetching"
	StageExtract  Stage = "extracting"
	StageValidate Stage = "validating"
	StageDeliver  Stage = "delivering"
)

// Kind classifies a run failure.
type Kind string

const (
	KindEmptyInput           Kind = "empty-input"
	KindNoDigits             Kind = "no-digits"
	KindElementNotFound      Kind = "element-not-found"
	KindTransientNetwork     Kind = "transient-network"
	KindTerminalNetwork      Kind = "terminal-network"
	KindDeliveryRejected     Kind = "delivery-rejected"
	KindConfigurationMissing Kind = "configuration-missing"
)

// Error is the structured failure a run surfaces to its caller. The first
// stage failure becomes the run's final outcome; nothing is rolled back
// because each stage either fully completed or was never attempted.
type Error struct {
	Stage      Stage
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("pipeline %s failed (%s): %s", e.Stage, e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// PageFetcher produces the monitored page's content.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ElementLocator finds the jackpot text node inside page content.
type ElementLocator interface {
	FindFirst(html, selector string) (string, error)
}

// MessageSender delivers the formatted notification.
type MessageSender interface {
	Send(ctx context.Context, text string) error
}

// Options holds the knobs for a run. Retry covers both the page fetch and
// the notification delivery.
type Options struct {
	PageURL  string
	Selector string
	Retry    retry.Config
	// DryRun stops before delivery and logs the would-be message.
	DryRun bool
}

// Pipeline sequences one fetch → extract → validate → deliver pass. It is
// not re-entrant and holds no state across invocations.
type Pipeline struct {
	opts    Options
	fetcher PageFetcher
	locator ElementLocator
	sender  MessageSender
	logger  *slog.Logger
}

// New assembles a pipeline from its collaborators.
func New(opts Options, fetcher PageFetcher, locator ElementLocator, sender MessageSender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		opts:    opts,
		fetcher: fetcher,
		locator: locator,
		sender:  sender,
		logger:  logger,
	}
}

// Run executes exactly one pass. Every stage fully completes, including
// its retries, before the next begins; the first failure ends the run.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := p.logger.With("run_id", uuid.New().String())

	logger.Info("fetching page", "url", p.opts.PageURL)
	html, err := retry.Do(ctx, logger, p.opts.Retry, func(ctx context.Context) (string, error) {
		return p.fetcher.Fetch(ctx, p.opts.PageURL)
	})
	if err != nil {
		return networkError(StageFetch, fmt.Sprintf("fetching %s", p.opts.PageURL), err)
	}

	logger.Debug("locating jackpot element", "selector", p.opts.Selector)
	raw, err := p.locator.FindFirst(html, p.opts.Selector)
	if err != nil {
		return &Error{
			Stage:   StageExtract,
			Kind:    KindElementNotFound,
			Message: fmt.Sprintf("selector %q matched nothing", p.opts.Selector),
			Cause:   err,
		}
	}

	value, verdict, err := jackpot.Normalize(raw)
	if err != nil {
		return &Error{
			Stage:   StageValidate,
			Kind:    normalizationKind(err),
			Message: fmt.Sprintf("normalizing extracted text %q", raw),
			Cause:   err,
		}
	}
	switch verdict {
	case jackpot.SuspiciouslyLow, jackpot.SuspiciouslyHigh:
		logger.Warn("jackpot value outside plausibility bounds",
			"value", value,
			"verdict", verdict.String())
	}

	text := fmt.Sprintf(MessageTemplate, value)
	if p.opts.DryRun {
		logger.Info("dry run, skipping delivery", "message", text)
		return nil
	}

	logger.Info("delivering notification", "value", value)
	_, err = retry.Do(ctx, logger, p.opts.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.sender.Send(ctx, text)
	})
	if err != nil {
		return deliveryError(err)
	}

	logger.Info("run complete", "value", value, "verdict", verdict.String())
	return nil
}

// networkError maps a propagated transport failure onto the run error
// vocabulary: still-retriable means retries were exhausted.
func networkError(stage Stage, msg string, err error) *Error {
	kind := KindTerminalNetwork
	if retry.Retriable(err) {
		kind = KindTransientNetwork
	}

	runErr := &Error{Stage: stage, Kind: kind, Message: msg, Cause: err}
	if code, ok := retry.StatusCode(err); ok {
		runErr.StatusCode = code
	}
	return runErr
}

// deliveryError maps sender failures; a terminal answer from the endpoint
// itself is a rejection rather than a plain network failure.
func deliveryError(err error) *Error {
	runErr := networkError(StageDeliver, "delivering notification", err)
	if runErr.Kind == KindTerminalNetwork && runErr.StatusCode != 0 {
		runErr.Kind = KindDeliveryRejected
	}
	return runErr
}

// normalizationKind preserves the normalization error kind on the run error.
func normalizationKind(err error) Kind {
	var normErr *jackpot.Error
	if errors.As(err, &normErr) && normErr.Kind == jackpot.KindEmptyInput {
		return KindEmptyInput
	}
	return KindNoDigits
}
