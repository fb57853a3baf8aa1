package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService, the membership directory.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func (s *GroupService) toAPI(ctx context.Context, g *models.Group) *api.Group {
	return groupToAPI(g, displayNames(ctx, s.store, g.Members...))
}

// CreateGroup creates a new group. The caller becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)

	slog.Info("CreateGroup request received",
		"name", name,
		"members_count", len(req.Msg.MemberIDs),
	)

	if err := required("name", name); err != nil {
		return nil, err
	}

	members := []string{userID}
	for _, id := range req.Msg.MemberIDs {
		if id == userID {
			continue
		}
		if _, err := s.store.GetUserByID(ctx, id); err != nil {
			slog.Error("CreateGroup failed - unknown member", "user_id", id, "error", err)
			return nil, toConnectError(err)
		}
		members = append(members, id)
	}

	group := &models.Group{
		Name:        name,
		Description: req.Msg.Description,
		CreatedBy:   userID,
		Members:     members,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: s.toAPI(ctx, group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: s.toAPI(ctx, group)}), nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = s.toAPI(ctx, g)
	}

	slog.Info("ListGroups successful", "count", len(out))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a user to the group. Adding an existing member is a no-op.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	var user *models.User
	switch {
	case req.Msg.UserID != "":
		user, err = s.store.GetUserByID(ctx, req.Msg.UserID)
	case req.Msg.Email != "":
		user, err = s.store.GetUserByEmail(ctx, auth.NormalizeEmail(req.Msg.Email))
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("user_id or email required"))
	}
	if err != nil {
		slog.Error("AddMember failed - unknown user", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	added, err := s.store.AddGroupMember(ctx, group.ID, user.ID)
	if err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "user_id", user.ID, "error", err)
		return nil, toConnectError(err)
	}

	group, err = s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("AddMember successful", "group_id", group.ID, "user_id", user.ID, "added", added)

	return connect.NewResponse(&api.AddMemberResponse{Added: added, Group: s.toAPI(ctx, group)}), nil
}

// RemoveMember removes a user from the group. Balances involving the user
// are kept; the ledger never forgets debt.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if err := required("user_id", req.Msg.UserID); err != nil {
		return nil, err
	}
	if req.Msg.UserID == group.CreatedBy {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("the group creator cannot be removed"))
	}

	removed, err := s.store.RemoveGroupMember(ctx, group.ID, req.Msg.UserID)
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("RemoveMember successful", "group_id", group.ID, "user_id", req.Msg.UserID, "removed", removed)

	return connect.NewResponse(&api.RemoveMemberResponse{Removed: removed}), nil
}

// DeleteGroup removes a group together with its expenses and balances. Only
// the creator may delete, and only once every balance is settled. Payments
// stay in the log.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if userID != group.CreatedBy {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the group creator can delete the group"))
	}

	var deleted bool
	err = s.store.InTx(ctx, func(q storage.Queries) error {
		open, err := q.ListBalancesByGroup(ctx, group.ID, models.StatusPending, models.StatusPartial)
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return connect.NewError(connect.CodeFailedPrecondition,
				fmt.Errorf("group has %d open balances", len(open)))
		}
		deleted, err = q.DeleteGroup(ctx, group.ID)
		return err
	})
	if err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("DeleteGroup successful", "group_id", group.ID, "deleted", deleted)

	return connect.NewResponse(&api.DeleteGroupResponse{Deleted: deleted}), nil
}
