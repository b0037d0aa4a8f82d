package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/granary/granary/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByOpenID(ctx context.Context, openid string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	BindRegistration(ctx context.Context, userID int64, openid, passcodeHash string) error
	RecordLogin(ctx context.Context, userID int64, openid, ip string, success bool) error
	RecordRegister(ctx context.Context, openid, ip, phone string, success bool, userID int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, phone, COALESCE(openid, ''), COALESCE(passcode, ''), status, created_at, updated_at`

func (r *PGRepository) scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Phone, &user.OpenID, &user.PasscodeHash, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByPhone fetches a user by phone number.
func (r *PGRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}

// FindByOpenID fetches a user by bound openid.
func (r *PGRepository) FindByOpenID(ctx context.Context, openid string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE openid = $1`, openid))
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// BindRegistration stores the openid and passcode hash and flips the account
// into the registered state.
func (r *PGRepository) BindRegistration(ctx context.Context, userID int64, openid, passcodeHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET openid = $2, passcode = $3, status = $4, updated_at = $5 WHERE id = $1`,
		userID, openid, passcodeHash, StatusRegistered, time.Now().UTC())
	return err
}

// RecordLogin appends a login_history row. userID may be zero for attempts
// against unknown openids.
func (r *PGRepository) RecordLogin(ctx context.Context, userID int64, openid, ip string, success bool) error {
	var user any
	if userID != 0 {
		user = userID
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_history (user_id, openid, ip, login_time, success) VALUES ($1, $2, $3, NOW(), $4)`,
		user, openid, ip, success)
	return err
}

// RecordRegister appends a register_history row. userID may be zero for
// failed attempts.
func (r *PGRepository) RecordRegister(ctx context.Context, openid, ip, phone string, success bool, userID int64) error {
	var user any
	if userID != 0 {
		user = userID
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO register_history (openid, ip, phone, register_time, success, user_id) VALUES ($1, $2, $3, NOW(), $4, $5)`,
		openid, ip, phone, success, user)
	return err
}

var _ Repository = (*PGRepository)(nil)
