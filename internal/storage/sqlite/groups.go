package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateGroup persists a new group and its members.
// Callers outside a transaction go through SQLiteStore.CreateGroup.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, member := range group.Members {
		if _, err := q.AddGroupMember(ctx, group.ID, member); err != nil {
			return err
		}
	}

	return nil
}

// GetGroup retrieves a group by ID, including its members in join order.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt)
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}

	members, err := q.listMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

func (q *queries) listMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// ListGroupsForUser retrieves every group the user is a member of, oldest first.
func (q *queries) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at, g.rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := q.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// AddGroupMember adds userID to the group. Adding an existing member is a no-op.
func (q *queries) AddGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?) ON CONFLICT (group_id, user_id) DO NOTHING",
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert group member: %w", err)
	}
	return affected(res)
}

// RemoveGroupMember removes userID from the group.
func (q *queries) RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete group member: %w", err)
	}
	return affected(res)
}

// DeleteGroup removes the group. Members, expenses, shares and balances go
// with it through ON DELETE CASCADE.
func (q *queries) DeleteGroup(ctx context.Context, groupID string) (bool, error) {
	res, err := q.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
