package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/storage/pgstore"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) (int64, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateLoginState(ctx context.Context, id int64, state LoginState) error
	UpdateProfile(ctx context.Context, id int64, name, email string) error
	UpdateEmergencyContact(ctx context.Context, id int64, slot int, phone string) error
}

var (
	errUserNotFound = apperr.NotFound("user not found")
	errPhoneTaken   = apperr.Integrity("Phone number already registered")
	errContactSlot  = apperr.Validation("emergency contact slot must be 1 or 2")
	contactColumns  = map[int]string{1: "emergency_contact_1", 2: "emergency_contact_2"}
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgUserColumns = `id, phone, name, password, COALESCE(email, ''), COALESCE(emergency_contact_1, ''),
        COALESCE(emergency_contact_2, ''), registration_date, last_login, login_attempts, is_locked, lock_time`

// Create inserts a new user and returns its id.
func (r *PostgresRepository) Create(ctx context.Context, user User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO users (phone, name, password, email, registration_date)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5) RETURNING id`,
		user.Phone, user.Name, user.PasswordHash, user.Email, user.RegisteredAt.UTC()).Scan(&id)
	if err != nil {
		if pgstore.IsUniqueViolation(err) {
			return 0, errPhoneTaken
		}
		return 0, apperr.Persistence("create user", err)
	}
	return id, nil
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE phone = $1`, phone))
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) scan(row pgx.Row) (User, error) {
	var (
		user      User
		lastLogin *time.Time
		lockTime  *time.Time
	)
	err := row.Scan(&user.ID, &user.Phone, &user.Name, &user.PasswordHash, &user.Email,
		&user.EmergencyContact1, &user.EmergencyContact2, &user.RegisteredAt, &lastLogin,
		&user.LoginAttempts, &user.IsLocked, &lockTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, errUserNotFound
		}
		return User{}, apperr.Persistence("load user", err)
	}
	user.RegisteredAt = user.RegisteredAt.UTC()
	if lastLogin != nil {
		user.LastLogin = lastLogin.UTC()
	}
	if lockTime != nil {
		user.LockTime = lockTime.UTC()
	}
	return user, nil
}

// UpdateLoginState stores attempt counters, lock flags and last login.
func (r *PostgresRepository) UpdateLoginState(ctx context.Context, id int64, state LoginState) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET login_attempts = $1, is_locked = $2, lock_time = $3, last_login = COALESCE($4, last_login)
        WHERE id = $5`, state.Attempts, state.IsLocked, nullTime(state.LockTime), nullTime(state.LastLogin), id)
	return r.checkUpdate(cmd.RowsAffected(), err, "update login state")
}

// UpdateProfile changes the editable profile fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, email = NULLIF($2, '') WHERE id = $3`, name, email, id)
	return r.checkUpdate(cmd.RowsAffected(), err, "update profile")
}

// UpdateEmergencyContact stores the phone for contact slot 1 or 2.
func (r *PostgresRepository) UpdateEmergencyContact(ctx context.Context, id int64, slot int, phone string) error {
	column, ok := contactColumns[slot]
	if !ok {
		return errContactSlot
	}
	cmd, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2`, column), phone, id)
	return r.checkUpdate(cmd.RowsAffected(), err, "update emergency contact")
}

func (r *PostgresRepository) checkUpdate(affected int64, err error, op string) error {
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if affected == 0 {
		return errUserNotFound
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
