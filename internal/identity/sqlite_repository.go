package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/siaga-app/siaga/internal/apperr"
	"github.com/siaga-app/siaga/internal/storage/sqlitestore"
)

// SQLiteRepository implements Repository on the local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository builds a SQLite-backed identity repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteUserColumns = `id, phone, name, password, COALESCE(email, ''), COALESCE(emergency_contact_1, ''),
        COALESCE(emergency_contact_2, ''), registration_date, last_login, login_attempts, is_locked, lock_time`

// Create inserts a new user and returns its id.
func (r *SQLiteRepository) Create(ctx context.Context, user User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (phone, name, password, email, registration_date)
        VALUES (?, ?, ?, NULLIF(?, ''), ?)`,
		user.Phone, user.Name, user.PasswordHash, user.Email, sqlitestore.ToMillis(user.RegisteredAt))
	if err != nil {
		if sqlitestore.IsUniqueViolation(err) {
			return 0, errPhoneTaken
		}
		return 0, apperr.Persistence("create user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Persistence("create user", err)
	}
	return id, nil
}

// FindByPhone fetches a user by phone number.
func (r *SQLiteRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE phone = ?`, phone))
}

// FindByID fetches a user by id.
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (User, error) {
	return r.scan(r.db.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scan(row *sql.Row) (User, error) {
	var (
		user         User
		registeredAt int64
		lastLogin    sql.NullInt64
		lockTime     sql.NullInt64
	)
	err := row.Scan(&user.ID, &user.Phone, &user.Name, &user.PasswordHash, &user.Email,
		&user.EmergencyContact1, &user.EmergencyContact2, &registeredAt, &lastLogin,
		&user.LoginAttempts, &user.IsLocked, &lockTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, errUserNotFound
		}
		return User{}, apperr.Persistence("load user", err)
	}
	user.RegisteredAt = sqlitestore.FromMillis(registeredAt)
	user.LastLogin = sqlitestore.FromNullMillis(lastLogin)
	user.LockTime = sqlitestore.FromNullMillis(lockTime)
	return user, nil
}

// UpdateLoginState stores attempt counters, lock flags and last login.
func (r *SQLiteRepository) UpdateLoginState(ctx context.Context, id int64, state LoginState) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET login_attempts = ?, is_locked = ?, lock_time = ?,
        last_login = COALESCE(?, last_login) WHERE id = ?`,
		state.Attempts, state.IsLocked, sqlitestore.NullMillis(state.LockTime), sqlitestore.NullMillis(state.LastLogin), id)
	return checkSQLUpdate(res, err, "update login state")
}

// UpdateProfile changes the editable profile fields.
func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, email = NULLIF(?, '') WHERE id = ?`, name, email, id)
	return checkSQLUpdate(res, err, "update profile")
}

// UpdateEmergencyContact stores the phone for contact slot 1 or 2.
func (r *SQLiteRepository) UpdateEmergencyContact(ctx context.Context, id int64, slot int, phone string) error {
	column, ok := contactColumns[slot]
	if !ok {
		return errContactSlot
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s = ? WHERE id = ?`, column), phone, id)
	return checkSQLUpdate(res, err, "update emergency contact")
}

func checkSQLUpdate(res sql.Result, err error, op string) error {
	if err != nil {
		return apperr.Persistence(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if n == 0 {
		return errUserNotFound
	}
	return nil
}
