package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefan/toto-notifier/internal/extract"
	"github.com/stefan/toto-notifier/internal/notify"
	"github.com/stefan/toto-notifier/internal/retry"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

type fakeSender struct {
	err   error
	calls int
	sent  []string
}

func (s *fakeSender) Send(_ context.Context, text string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

type statusErr struct {
	code int
}

func (e *statusErr) Error() string       { return fmt.Sprintf("HTTP status %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func jackpotPage(value string) string {
	return fmt.Sprintf(`<html><body><div class="jackpot"><span class="sum">%s</span></div></body></html>`, value)
}

func testOptions() Options {
	return Options{
		PageURL:  "https://toto.bg/",
		Selector: ".jackpot .sum",
		Retry:    retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond},
	}
}

func newTestPipeline(opts Options, fetcher *fakeFetcher, sender *fakeSender) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(opts, fetcher, extract.Locator{}, sender, logger)
}

func TestRun_DeliversFormattedJackpot(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("5 000 000 лева")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "💰 The current Toto jackpot is: *5 000 000 лв.*", sender.sent[0])
	assert.Equal(t, 1, fetcher.calls)
}

func TestRun_IrregularWhitespace(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("  3   500   000   лева  ")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "💰 The current Toto jackpot is: *3 500 000 лв.*", sender.sent[0])
}

func TestRun_MarkerWordAbsent(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("4 000 000")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "💰 The current Toto jackpot is: *4 000 000 лв.*", sender.sent[0])
}

func TestRun_ElementNotFound(t *testing.T) {
	fetcher := &fakeFetcher{html: `<html><body><div class="other">nothing</div></body></html>`}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageExtract, runErr.Stage)
	assert.Equal(t, KindElementNotFound, runErr.Kind)
	assert.ErrorIs(t, err, extract.ErrElementNotFound)
	// A missing element is not transient: one fetch, no message.
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 0, sender.calls)
}

func TestRun_EmptyExtract(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageValidate, runErr.Stage)
	assert.Equal(t, KindEmptyInput, runErr.Kind)
	assert.Equal(t, 0, sender.calls)
}

func TestRun_NoDigits(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("предстои обявяване")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageValidate, runErr.Stage)
	assert.Equal(t, KindNoDigits, runErr.Kind)
	assert.Equal(t, 0, sender.calls)
}

func TestRun_FetchRetriesThenFails(t *testing.T) {
	fetcher := &fakeFetcher{err: &statusErr{code: 503}}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageFetch, runErr.Stage)
	assert.Equal(t, KindTransientNetwork, runErr.Kind)
	assert.Equal(t, 503, runErr.StatusCode)
	// MaxRetries=1 means two attempts.
	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, 0, sender.calls)
}

func TestRun_FetchTerminalFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: &statusErr{code: 404}}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageFetch, runErr.Stage)
	assert.Equal(t, KindTerminalNetwork, runErr.Kind)
	assert.Equal(t, 404, runErr.StatusCode)
	assert.Equal(t, 1, fetcher.calls)
}

func TestRun_DeliveryRejected(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("5 000 000 лева")}
	sender := &fakeSender{err: &notify.APIError{Code: 400, Description: "chat not found"}}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageDeliver, runErr.Stage)
	assert.Equal(t, KindDeliveryRejected, runErr.Kind)
	assert.Equal(t, 400, runErr.StatusCode)
	assert.Equal(t, 1, sender.calls)
}

func TestRun_DeliveryTransientExhausted(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("5 000 000 лева")}
	sender := &fakeSender{err: &notify.APIError{Code: 502}}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.Error(t, err)

	var runErr *Error
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, StageDeliver, runErr.Stage)
	assert.Equal(t, KindTransientNetwork, runErr.Kind)
	assert.Equal(t, 2, sender.calls)
}

func TestRun_DryRunSkipsDelivery(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("5 000 000 лева")}
	sender := &fakeSender{}

	opts := testOptions()
	opts.DryRun = true

	err := newTestPipeline(opts, fetcher, sender).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sender.calls)
}

func TestRun_SuspiciousVerdictDoesNotBlock(t *testing.T) {
	fetcher := &fakeFetcher{html: jackpotPage("12 лева")}
	sender := &fakeSender{}

	err := newTestPipeline(testOptions(), fetcher, sender).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "💰 The current Toto jackpot is: *12 лв.*", sender.sent[0])
}
