package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// StatsOverview calls the stats_overview() function and returns its JSON report verbatim.
func (r *Repository) StatsOverview(ctx context.Context) (json.RawMessage, error) {
	var raw []byte
	if err := r.pool.QueryRow(ctx, `SELECT stats_overview()::text`).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to load stats overview: %w", err)
	}
	return json.RawMessage(raw), nil
}
