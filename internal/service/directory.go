package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/settleup/internal/storage"
)

// UnknownDisplayName is shown for user IDs the directory does not know.
const UnknownDisplayName = "Unknown"

// displayNames resolves user IDs to display names for presentation.
// Lookup failures degrade to UnknownDisplayName.
func displayNames(ctx context.Context, store storage.Queries, ids ...string) map[string]string {
	names := make(map[string]string, len(ids))
	users, err := store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Failed to resolve display names", "count", len(ids), "error", err)
	}
	for _, id := range ids {
		if u, ok := users[id]; ok {
			names[id] = u.DisplayName
		} else {
			names[id] = UnknownDisplayName
		}
	}
	return names
}
