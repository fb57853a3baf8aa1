// Package cache stores simplified settlement plans between ledger writes.
//
// Every group has a write generation that lives in the cache next to the
// plans. The ledger advances it after each committed write, and plans are
// stored under the generation they were computed at. A plan computed from
// rows read before a write therefore lands under a generation nobody asks
// for again, even when the write came from another process sharing the
// same backend. Entries also expire after a TTL.
package cache

import (
	"context"
	"strconv"

	"github.com/mmynk/settleup/internal/models"
)

// Cache is an interface used for caching a group's simplified transfers.
type Cache interface {
	// Generation returns the group's current write generation, zero if the
	// group was never written.
	Generation(ctx context.Context, groupID string) (uint64, error)

	// GetTransfers returns the plan cached for gen. ok is false on a miss.
	GetTransfers(ctx context.Context, groupID string, gen uint64) (transfers []models.SimplifiedTransfer, ok bool, err error)
	SetTransfers(ctx context.Context, groupID string, gen uint64, transfers []models.SimplifiedTransfer) error

	// InvalidateGroup advances the group's generation, orphaning its plans.
	InvalidateGroup(ctx context.Context, groupID string) error
}

func makeKey(groupID string, gen uint64) string {
	return "settleup:simplify:" + groupID + ":" + strconv.FormatUint(gen, 10)
}

func genKey(groupID string) string {
	return "settleup:gen:" + groupID
}
