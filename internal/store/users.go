package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// UserFields are the profile fields of a user.
type UserFields struct {
	Username    string
	DisplayName string
	EmployeeID  string
	Email       string
	Department  string
	Role        string
}

const userColumns = `id, username, password_hash, display_name, employee_id, email, department,
	role, is_active, created_at`

// CreateUser creates a new active user.
func CreateUser(ctx context.Context, db *sql.DB, f UserFields, passwordHash string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, display_name, employee_id, email, department, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Username, passwordHash, f.DisplayName, nullString(f.EmployeeID), nullString(f.Email),
		nullString(f.Department), f.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return getUser(ctx, db, id)
}

func getUser(ctx context.Context, q querier, id int64) (*model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username (including inactive users for auth checks).
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's profile, role and active flag. The username is
// not changed.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, f UserFields, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, employee_id = ?, email = ?, department = ?,
		        role = ?, is_active = ?
		 WHERE id = ?`,
		f.DisplayName, nullString(f.EmployeeID), nullString(f.Email), nullString(f.Department),
		f.Role, active, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

func scanUser(s scanner) (*model.User, error) {
	u := &model.User{}
	var employeeID, email, department sql.NullString
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &employeeID, &email,
		&department, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.EmployeeID = employeeID.String
	u.Email = email.String
	u.Department = department.String
	return u, nil
}

// Users exposes user lookups to the lending service.
type Users struct {
	DB *sql.DB
}

func (u *Users) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return GetUserByUsername(ctx, u.DB, username)
}
