package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresBoltcardStore reads and updates lnbits_boltcards rows. This store
// is pure I/O; the merge semantics live in the card manager.
type PostgresBoltcardStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresBoltcardStore {
	return &PostgresBoltcardStore{db: db}
}

func (s *PostgresBoltcardStore) FindByUserAndCard(ctx context.Context, userDUID, cardID string) (BoltcardRecord, error) {
	query := `
		SELECT id, user_duid, card_id, functions, frost_share_ids
		FROM lnbits_boltcards
		WHERE user_duid = $1 AND card_id = $2
	`
	var record BoltcardRecord
	err := s.db.QueryRowContext(ctx, query, userDUID, cardID).Scan(
		&record.ID,
		&record.UserDUID,
		&record.CardID,
		pq.Array(&record.Functions),
		pq.Array(&record.FrostShareIDs),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BoltcardRecord{}, ErrNotFound
		}
		return BoltcardRecord{}, fmt.Errorf("find boltcard: %w", err)
	}
	return record, nil
}

func (s *PostgresBoltcardStore) Update(ctx context.Context, record BoltcardRecord) error {
	query := `
		UPDATE lnbits_boltcards
		SET functions = $1, frost_share_ids = $2
		WHERE id = $3
	`
	res, err := s.db.ExecContext(ctx, query,
		pq.Array(record.Functions),
		pq.Array(record.FrostShareIDs),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update boltcard: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
