package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for a wrong username or
// password; the two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// NewUserInput is the payload for user registration.
type NewUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      string
}

type UserService interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, in NewUserInput) (*User, error)
	ChangePassword(ctx context.Context, id int64, newPassword string) error
	// SetRole and SetActive reject actingUserID == targetID: admins cannot
	// demote or lock themselves out.
	SetRole(ctx context.Context, actingUserID, targetID int64, role string) error
	SetActive(ctx context.Context, actingUserID, targetID int64, active bool) error
	// Delete additionally rejects users that transactions reference.
	Delete(ctx context.Context, actingUserID, targetID int64) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

const userColumns = "id, username, email, first_name, last_name, password_hash, role, is_active, created_at"

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1 AND is_active", username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *userService) Create(ctx context.Context, in NewUserInput) (*User, error) {
	switch {
	case in.Username == "":
		return nil, fieldError("username", "username is required")
	case len(in.Password) < 8:
		return nil, fieldError("password", "password must be at least 8 characters")
	}
	role := in.Role
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, fieldError("role", "role must be admin or staff")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		IsActive:  true,
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, in.Username, in.Email, in.FirstName, in.LastName, string(hash), role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", in.Username, err)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int64, newPassword string) error {
	if len(newPassword) < 8 {
		return fieldError("password", "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", string(hash), id)
	if err != nil {
		return fmt.Errorf("failed to update password for user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *userService) SetRole(ctx context.Context, actingUserID, targetID int64, role string) error {
	if actingUserID == targetID {
		return fmt.Errorf("cannot change own role: %w", ErrUserProtected)
	}
	if role != RoleAdmin && role != RoleStaff {
		return fieldError("role", "role must be admin or staff")
	}
	tag, err := s.pool.Exec(ctx, "UPDATE users SET role = $1 WHERE id = $2", role, targetID)
	if err != nil {
		return fmt.Errorf("failed to set role for user %d: %w", targetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", targetID, ErrNotFound)
	}
	return nil
}

func (s *userService) SetActive(ctx context.Context, actingUserID, targetID int64, active bool) error {
	if actingUserID == targetID {
		return fmt.Errorf("cannot change own active status: %w", ErrUserProtected)
	}
	tag, err := s.pool.Exec(ctx, "UPDATE users SET is_active = $1 WHERE id = $2", active, targetID)
	if err != nil {
		return fmt.Errorf("failed to set active flag for user %d: %w", targetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", targetID, ErrNotFound)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, actingUserID, targetID int64) error {
	if actingUserID == targetID {
		return fmt.Errorf("cannot delete own account: %w", ErrUserProtected)
	}

	var linked int
	if err := s.pool.QueryRow(ctx,
		"SELECT count(*) FROM transactions WHERE user_id = $1", targetID,
	).Scan(&linked); err != nil {
		return fmt.Errorf("failed to check user history: %w", err)
	}
	if linked > 0 {
		return fmt.Errorf("user %d has %d linked transaction(s): %w", targetID, linked, ErrUserProtected)
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", targetID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", targetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", targetID, ErrNotFound)
	}
	return nil
}
