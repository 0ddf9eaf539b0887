package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardgate/pkg/testutil"
)

func TestInMemoryBoltcardStore(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a store seeded with one record", func(t *testing.T) {
		s := NewInMemoryBoltcardStore()
		s.Seed(BoltcardRecord{
			ID:        "row-1",
			UserDUID:  "duid-1",
			CardID:    "card-1",
			Functions: []string{"payment"},
		})

		testutil.When(t, "looking up the seeded pair", func(t *testing.T) {
			record, err := s.FindByUserAndCard(ctx, "duid-1", "card-1")
			require.NoError(t, err)
			assert.Equal(t, "row-1", record.ID)
			assert.Equal(t, []string{"payment"}, record.Functions)
		})

		testutil.When(t, "looking up an unknown pair", func(t *testing.T) {
			_, err := s.FindByUserAndCard(ctx, "duid-1", "card-2")
			assert.True(t, errors.Is(err, ErrNotFound))
		})

		testutil.When(t, "updating the record", func(t *testing.T) {
			record, err := s.FindByUserAndCard(ctx, "duid-1", "card-1")
			require.NoError(t, err)
			record.Functions = append(record.Functions, "signing")
			record.FrostShareIDs = []string{"share-1"}
			require.NoError(t, s.Update(ctx, record))

			updated, err := s.FindByUserAndCard(ctx, "duid-1", "card-1")
			require.NoError(t, err)
			assert.Equal(t, []string{"payment", "signing"}, updated.Functions)
			assert.Equal(t, []string{"share-1"}, updated.FrostShareIDs)
		})

		testutil.When(t, "updating a record that was never created", func(t *testing.T) {
			err := s.Update(ctx, BoltcardRecord{UserDUID: "ghost", CardID: "card-9"})
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	})
}
