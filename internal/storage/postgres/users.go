package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brokerage/internal/auth"
	"brokerage/internal/storage"
)

// UserStore implements auth.UserStore.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Save(ctx context.Context, user auth.User) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.Username, user.PasswordHash, string(user.Role), user.CreatedAt)
	return mapWrite(err, "save user")
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (auth.User, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx, `
		SELECT username, password_hash, role, created_at FROM users WHERE username = $1
	`, username)

	var user auth.User
	var role string
	if err := row.Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, storage.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("find user: %w", err)
	}
	user.Role = auth.Role(role)
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]auth.User, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx, `
		SELECT username, password_hash, role, created_at FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []auth.User
	for rows.Next() {
		var user auth.User
		var role string
		if err := rows.Scan(&user.Username, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.Role = auth.Role(role)
		out = append(out, user)
	}
	return out, rows.Err()
}
