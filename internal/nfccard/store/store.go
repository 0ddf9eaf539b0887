// Package store persists boltcard records. Records are created by the
// payments layer; this package only looks them up and updates them after
// card programming.
package store

import (
	"context"

	dErrors "cardgate/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across in-memory and
// Postgres implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "boltcard record not found")

// BoltcardRecord mirrors the lnbits_boltcards row this layer consumes.
type BoltcardRecord struct {
	ID            string
	UserDUID      string
	CardID        string
	Functions     []string
	FrostShareIDs []string
}

// BoltcardStore is interface-driven so the card manager stays testable and
// persistence can move without rewiring the orchestration code.
type BoltcardStore interface {
	FindByUserAndCard(ctx context.Context, userDUID, cardID string) (BoltcardRecord, error)
	Update(ctx context.Context, record BoltcardRecord) error
}
