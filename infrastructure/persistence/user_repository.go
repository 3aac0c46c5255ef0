package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/domain/repository"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// UserRepository is the PostgreSQL session provider implementation.
type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) repository.IUser { return &UserRepository{db} }

func (r *UserRepository) GetById(ctx context.Context, id int) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, points, created_at, updated_at FROM users WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.Points, &u.CreatedAt, &u.UpdatedAt); err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: query user by id failed")
		return u, err
	}
	return u, nil
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, points, created_at, updated_at FROM users WHERE user_name = $1`, userName)
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.Points, &u.CreatedAt, &u.UpdatedAt); err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: query user by username failed")
		return u, err
	}
	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (name, user_name, password, points, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
		user.Name, user.UserName, user.Password, user.Points, createdAt)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("psql: create user failed")
	}
	return err
}

func (r *UserRepository) GetBalance(ctx context.Context, userName string) (int, error) {
	var points int
	row := r.db.QueryRowContext(ctx, `SELECT points FROM users WHERE user_name = $1`, userName)
	if err := row.Scan(&points); err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: query balance failed")
		return 0, err
	}
	return points, nil
}

func (r *UserRepository) SetBalance(ctx context.Context, userName string, balance int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET points = $1, updated_at = NOW() WHERE user_name = $2`, balance, userName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("psql: set balance failed")
	}
	return err
}
