package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"favtunes/internal/models"
)

// CreateUser inserts a user. The caller supplies the ID, normalised email
// and password hash.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, now).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UserByEmail looks a user up by normalised email.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

// UserByID looks a user up by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		user models.User
		name sql.NullString
		hash sql.NullString
	)
	if err := row.Scan(&user.ID, &name, &user.Email, &hash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if name.Valid {
		user.Name = &name.String
	}
	if hash.Valid {
		user.PasswordHash = &hash.String
	}
	return user, nil
}
