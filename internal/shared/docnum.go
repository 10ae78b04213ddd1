package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// NextDocumentNumberTx allocates the next number from a named sequence inside
// an open transaction and formats it as PREFIX-000001. Allocation happens in
// the same transaction as the document insert, so a rollback releases no gaps
// beyond the aborted one.
func NextDocumentNumberTx(ctx context.Context, tx pgx.Tx, name, prefix string) (string, error) {
	n, err := bumpSequenceTx(ctx, tx, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

// NextYearlyDocumentNumberTx allocates from a per-year sequence and formats
// the number as PREFIX-YYNNNNN, e.g. QT-2600042. Each calendar year restarts
// the counter.
func NextYearlyDocumentNumberTx(ctx context.Context, tx pgx.Tx, name, prefix string, now time.Time) (string, error) {
	year := now.UTC().Year()
	n, err := bumpSequenceTx(ctx, tx, fmt.Sprintf("%s:%d", name, year))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%02d%05d", prefix, year%100, n), nil
}

func bumpSequenceTx(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO doc_sequences (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = doc_sequences.value + 1
		RETURNING value
	`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("bump sequence %s: %w", name, err)
	}
	return n, nil
}
