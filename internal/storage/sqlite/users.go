package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const userColumns = `id, email, display_name, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a user. Emails are unique.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: email %s already registered", storage.ErrDuplicate, user.Email)
	case err != nil:
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return user, nil
}

func (q *queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// GetUsersByIDs looks up many users at once. Duplicate and unknown IDs are
// tolerated; unknown ones are simply absent from the map.
func (q *queries) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (?`+repeatPlaceholder(len(ids)-1)+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
