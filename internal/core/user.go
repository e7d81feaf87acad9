package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/mailings/internal/model"
	"github.com/edvin/mailings/internal/platform"
	"github.com/edvin/mailings/internal/policy"
)

// UserService manages user accounts. Accounts are created through the CLI;
// the HTTP surface only exposes the caller's own profile.
type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, email, password, fullName string, isStaff bool) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		ID:           platform.NewID(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		IsStaff:      isStaff,
		Groups:       []string{},
		Permissions:  policy.MemberPermissions(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, avatar_url, phone, country,
		   is_staff, groups, permissions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.AvatarURL, u.Phone, u.Country,
		u.IsStaff, u.Groups, u.Permissions, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("user with email %s already exists", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

const userSelect = `SELECT id, email, full_name, avatar_url, phone, country,
	   is_staff, groups, permissions, created_at, updated_at FROM users`

func (s *UserService) scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.AvatarURL, &u.Phone, &u.Country,
		&u.IsStaff, &u.Groups, &u.Permissions, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.scanUser(s.db.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.scanUser(s.db.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user by email: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateProfile writes the caller-editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, u *model.User) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET email = $1, full_name = $2, avatar_url = $3, phone = $4,
		   country = $5, updated_at = now()
		 WHERE id = $6`,
		u.Email, u.FullName, u.AvatarURL, u.Phone, u.Country, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return validationf("user with email %s already exists", u.Email)
		}
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user %s: %w", u.ID, ErrNotFound)
	}
	return nil
}

// GrantManager adds a user to the managers group and grants the full
// capability set, including dispatch.
func (s *UserService) GrantManager(ctx context.Context, email string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET
		   groups = (SELECT array_agg(DISTINCT g) FROM unnest(groups || $1) AS g),
		   permissions = $2,
		   updated_at = now()
		 WHERE email = $3`,
		policy.ManagersGroup, policy.ManagerPermissions(), email,
	)
	if err != nil {
		return fmt.Errorf("grant manager to %s: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("grant manager to %s: %w", email, ErrNotFound)
	}
	return nil
}
