package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RequestRecord captures one call to the external generation service.
type RequestRecord struct {
	Provider     string `db:"provider"`
	Model        string `db:"model"`
	Purpose      string `db:"purpose"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	LatencyMs    int64  `db:"latency_ms"`
	Success      bool   `db:"success"`
	ErrorMessage string `db:"error_message"`
}

// RequestStats aggregates the request log for the stats command.
type RequestStats struct {
	Requests     int `db:"requests"`
	Failures     int `db:"failures"`
	InputTokens  int `db:"input_tokens"`
	OutputTokens int `db:"output_tokens"`
}

// RequestRepo appends to and summarizes the generation request log.
type RequestRepo interface {
	Append(ctx context.Context, rec RequestRecord) error
	Stats(ctx context.Context) (RequestStats, error)
}

type requestRepo struct {
	db *sqlx.DB
}

func (r *requestRepo) Append(ctx context.Context, rec RequestRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_requests
			(provider, model, purpose, input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES
			(:provider, :model, :purpose, :input_tokens, :output_tokens, :latency_ms, :success, :error_message)`,
		rec)
	if err != nil {
		return fmt.Errorf("append request record: %w", err)
	}
	return nil
}

func (r *requestRepo) Stats(ctx context.Context) (RequestStats, error) {
	var st RequestStats
	err := r.db.GetContext(ctx, &st, `
		SELECT
			COUNT(*)                                        AS requests,
			COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failures,
			COALESCE(SUM(input_tokens), 0)                  AS input_tokens,
			COALESCE(SUM(output_tokens), 0)                 AS output_tokens
		FROM llm_requests`)
	if err != nil {
		return RequestStats{}, fmt.Errorf("request stats: %w", err)
	}
	return st, nil
}
