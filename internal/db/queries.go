package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quotafleet/quotafleet-tui/internal/models"
)

const timeFormat = "2006-01-02 15:04:05"

// InsertWindowSnapshot persists one normalized window reading.
func (db *DB) InsertWindowSnapshot(snap *models.WindowSnapshot) error {
	query := `
		INSERT INTO window_snapshots (
			account_id, label, ratio, limit_value, used_value,
			remaining_value, window_minutes, reset_at, health_state, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		snap.AccountID,
		snap.Label,
		snap.Ratio,
		snap.Limit,
		snap.Used,
		snap.Remaining,
		snap.WindowMinutes,
		nullString(snap.ResetAt),
		snap.HealthState,
		timestamp.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert window snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snap.ID = id
	}

	return nil
}

// InsertFleetSnapshot persists one fleet-bucket reading.
func (db *DB) InsertFleetSnapshot(snap *models.FleetSnapshot) error {
	query := `
		INSERT INTO fleet_snapshots (
			signature, label, remaining_percent, account_count, timestamp
		) VALUES (?, ?, ?, ?, ?)
	`

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		snap.Signature,
		snap.Label,
		snap.RemainingPercent,
		snap.AccountCount,
		timestamp.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fleet snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snap.ID = id
	}

	return nil
}

// GetAccountHistory returns charted remaining-percent series per window
// label for one account over the given range, oldest first.
func (db *DB) GetAccountHistory(accountID string, r models.TimeRange) ([]models.HistorySeries, error) {
	query := `
		SELECT label, ratio, timestamp
		FROM window_snapshots
		WHERE account_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`

	cutoff := time.Now().Add(-r.Duration()).UTC().Format(timeFormat)
	rows, err := db.QueryContext(context.Background(), query, accountID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query account history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSeries(rows, func(ratio float64) float64 { return ratio * 100 })
}

// GetFleetHistory returns charted remaining-percent series per bucket label
// over the given range, oldest first.
func (db *DB) GetFleetHistory(r models.TimeRange) ([]models.HistorySeries, error) {
	query := `
		SELECT label, remaining_percent, timestamp
		FROM fleet_snapshots
		WHERE timestamp >= ?
		ORDER BY timestamp ASC
	`

	cutoff := time.Now().Add(-r.Duration()).UTC().Format(timeFormat)
	rows, err := db.QueryContext(context.Background(), query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query fleet history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSeries(rows, func(pct float64) float64 { return pct })
}

// scanSeries groups (label, value, timestamp) rows into one series per
// label, preserving first-seen label order.
func scanSeries(rows *sql.Rows, toPercent func(float64) float64) ([]models.HistorySeries, error) {
	index := make(map[string]int)
	var series []models.HistorySeries

	for rows.Next() {
		var label string
		var value float64
		var ts time.Time
		if err := rows.Scan(&label, &value, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		i, ok := index[label]
		if !ok {
			i = len(series)
			index[label] = i
			series = append(series, models.HistorySeries{Label: label})
		}
		series[i].Points = append(series[i].Points, models.HistoryPoint{
			Timestamp: ts,
			Percent:   toPercent(value),
		})
	}

	return series, rows.Err()
}

// PruneBefore deletes snapshots older than the cutoff and returns how many
// rows were removed.
func (db *DB) PruneBefore(cutoff time.Time) (int64, error) {
	formatted := cutoff.UTC().Format(timeFormat)
	var total int64

	for _, table := range []string{"window_snapshots", "fleet_snapshots"} {
		result, err := db.ExecContext(context.Background(),
			fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table), formatted)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s: %w", table, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}

	return total, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
