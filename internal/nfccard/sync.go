package nfccard

import (
	"context"

	dErrors "cardgate/pkg/domain-errors"
)

// SyncAfterProgramming reconciles the boltcard row for (userDUID, cardID)
// with what was just written to the physical card: newly programmed
// functions and share IDs are set-union merged into the existing arrays.
// Rows are never created here; an absent row is a not-found error the
// orchestrator demotes to a warning.
func (m *Manager) SyncAfterProgramming(ctx context.Context, userDUID, cardID string, functions []Function, frostShareIDs []string) error {
	if m.store == nil {
		return dErrors.New(dErrors.CodeConfiguration, "boltcard store is not configured")
	}

	record, err := m.store.FindByUserAndCard(ctx, userDUID, cardID)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(functions))
	for _, fn := range functions {
		names = append(names, string(fn))
	}
	record.Functions = unionStrings(record.Functions, names)
	record.FrostShareIDs = unionStrings(record.FrostShareIDs, frostShareIDs)

	return m.store.Update(ctx, record)
}

// unionStrings appends the members of add missing from base, preserving
// base's order so repeated syncs stay stable.
func unionStrings(base, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base)+len(add))
	for _, v := range base {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range add {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
