package ancestry

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ngmaloney/prop-buddy/internal/models"
)

// SaveDataset replaces the stored ancestry table with ds, keeping its order.
func SaveDataset(ctx context.Context, db *sql.DB, ds *Dataset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "ancestry: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM ancestry"); err != nil {
		return eris.Wrap(err, "ancestry: clear table")
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO ancestry (suburb, total_population, ancestries) VALUES (?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "ancestry: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range ds.Records() {
		shares, err := json.Marshal(r.Ancestries)
		if err != nil {
			return eris.Wrapf(err, "ancestry: encode %q", r.SuburbKey)
		}
		if _, err := stmt.ExecContext(ctx, r.SuburbKey, r.TotalPopulation, string(shares)); err != nil {
			return eris.Wrapf(err, "ancestry: insert %q", r.SuburbKey)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "ancestry: commit")
	}
	zap.L().Info("ancestry: stored dataset", zap.Int("suburbs", ds.Len()))
	return nil
}

// LoadDatasetFromDB reads the stored ancestry table in insertion order.
func LoadDatasetFromDB(ctx context.Context, db *sql.DB) (*Dataset, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT suburb, total_population, ancestries FROM ancestry ORDER BY id")
	if err != nil {
		return nil, eris.Wrap(err, "ancestry: query")
	}
	defer rows.Close() //nolint:errcheck

	var records []models.AncestryRecord
	for rows.Next() {
		var (
			r      models.AncestryRecord
			shares string
		)
		if err := rows.Scan(&r.SuburbKey, &r.TotalPopulation, &shares); err != nil {
			return nil, eris.Wrap(err, "ancestry: scan")
		}
		if err := json.Unmarshal([]byte(shares), &r.Ancestries); err != nil {
			return nil, eris.Wrapf(err, "ancestry: decode %q", r.SuburbKey)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "ancestry: iterate")
	}
	return NewDataset(records), nil
}
