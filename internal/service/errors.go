package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	errNotMember = errors.New("caller is not a member of this group")
	errNoCaller  = errors.New("no authenticated user")
	errNoShared  = errors.New("caller shares no group with this user")
)

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, models.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrDuplicate):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func required(field, value string) error {
	if value == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s required", field))
	}
	return nil
}

func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNoCaller)
	}
	return userID, nil
}

// memberGroup loads the group and checks the caller belongs to it.
func memberGroup(ctx context.Context, store storage.Queries, groupID string) (*models.Group, string, error) {
	if err := required("group_id", groupID); err != nil {
		return nil, "", err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, "", err
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, "", toConnectError(err)
	}
	if !group.HasMember(userID) {
		slog.Warn("Group access denied", "group_id", groupID, "user_id", userID)
		return nil, "", connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return group, userID, nil
}

// sharedGroups returns the groups the caller and subject both belong to.
// Callers looking at another user only see that user's rows from these
// groups; sharing none is PermissionDenied.
func sharedGroups(ctx context.Context, store storage.Queries, userID, subject string) (map[string]bool, error) {
	groups, err := store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	shared := make(map[string]bool)
	for _, g := range groups {
		if g.HasMember(subject) {
			shared[g.ID] = true
		}
	}
	if len(shared) == 0 {
		slog.Warn("User access denied", "user_id", userID, "subject_id", subject)
		return nil, connect.NewError(connect.CodePermissionDenied, errNoShared)
	}
	return shared, nil
}

func paymentsIn(list []*models.Payment, groups map[string]bool) []*models.Payment {
	out := list[:0]
	for _, p := range list {
		if groups[p.GroupID] {
			out = append(out, p)
		}
	}
	return out
}

func balancesIn(rows []models.Balance, groups map[string]bool) []models.Balance {
	out := rows[:0]
	for _, b := range rows {
		if groups[b.GroupID] {
			out = append(out, b)
		}
	}
	return out
}
