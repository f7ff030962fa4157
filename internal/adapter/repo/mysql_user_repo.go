package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

type MySQLUserRepo struct{ db *sql.DB }

func NewMySQLUserRepo(db *sql.DB) *MySQLUserRepo { return &MySQLUserRepo{db: db} }

func (r *MySQLUserRepo) GetByEmail(ctx context.Context, email string) (*usecase.UserRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, password_hash, role
FROM users WHERE email = ?`, email)

	var rec usecase.UserRecord
	var role string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Role = entity.Role(role)
	return &rec, nil
}

var _ usecase.UserRepo = (*MySQLUserRepo)(nil)
