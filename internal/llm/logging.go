package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/bandup/internal/store"
)

// LoggingProvider is a decorator that records every generation request in
// the store's request log.
type LoggingProvider struct {
	inner    Provider
	requests store.RequestRepo
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, requests store.RequestRepo) Provider {
	return &LoggingProvider{inner: p, requests: requests}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	rec := store.RequestRecord{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.Model = resp.Model
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
	}

	// Log the record but don't fail the request if logging fails.
	if logErr := l.requests.Append(ctx, rec); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log generation request: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
