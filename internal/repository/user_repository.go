package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/database"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
)

type SQLUserRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLUserRepository(db *sql.DB, dialect database.Dialect) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: dialect}
}

func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := r.dialect.Rebind(
		`INSERT INTO users (login_id, password, name, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		user.LoginID, user.Password, user.Name, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLUserRepository) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, login_id, password, name, created_at FROM users
		 WHERE login_id = ?`)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, loginID).
		Scan(&user.ID, &user.LoginID, &user.Password, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
