package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/mailings/internal/model"
	"github.com/edvin/mailings/internal/platform"
)

// tokenPrefixLen is how much of the raw token is stored in the clear for
// display in listings.
const tokenPrefixLen = 12

// TokenService manages API tokens. Tokens identify a user; capabilities come
// from the user record, not the token.
type TokenService struct {
	db DB
}

func NewTokenService(db DB) *TokenService {
	return &TokenService{db: db}
}

// Create generates a new token for a user, stores the hash, and returns the
// model along with the raw token string. The raw token must be shown to the
// caller exactly once.
func (s *TokenService) Create(ctx context.Context, userID, name string) (*model.APIToken, string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	rawToken := "mlt_" + hex.EncodeToString(rawBytes) // 68 chars total

	return s.createWithToken(ctx, userID, name, rawToken)
}

// CreateWithRawToken stores a token with a caller-provided raw value.
// Used for well-known dev/test tokens where the raw value must be deterministic.
func (s *TokenService) CreateWithRawToken(ctx context.Context, userID, name, rawToken string) (*model.APIToken, error) {
	token, _, err := s.createWithToken(ctx, userID, name, rawToken)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *TokenService) createWithToken(ctx context.Context, userID, name, rawToken string) (*model.APIToken, string, error) {
	if len(rawToken) < tokenPrefixLen {
		return nil, "", validationf("raw token must be at least %d characters", tokenPrefixLen)
	}

	id := platform.NewID()

	hash := sha256.Sum256([]byte(rawToken))
	tokenHash := hex.EncodeToString(hash[:])
	tokenPrefix := rawToken[:tokenPrefixLen] // "mlt_" + first 8 hex chars

	_, err := s.db.Exec(ctx,
		`INSERT INTO api_tokens (id, user_id, name, token_hash, token_prefix, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		id, userID, name, tokenHash, tokenPrefix,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert token: %w", err)
	}

	token := &model.APIToken{
		ID:          id,
		UserID:      userID,
		Name:        name,
		TokenPrefix: tokenPrefix,
	}
	// Fetch the server-generated created_at.
	err = s.db.QueryRow(ctx, "SELECT created_at FROM api_tokens WHERE id = $1", id).Scan(&token.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("get token created_at: %w", err)
	}

	return token, rawToken, nil
}

// Authenticate resolves a raw token to its owning user. Revoked and unknown
// tokens both yield ErrNotFound.
func (s *TokenService) Authenticate(ctx context.Context, rawToken string) (*model.User, error) {
	hash := sha256.Sum256([]byte(rawToken))
	tokenHash := hex.EncodeToString(hash[:])

	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.full_name, u.is_staff, u.groups, u.permissions
		 FROM users u JOIN api_tokens t ON t.user_id = u.id
		 WHERE t.token_hash = $1 AND t.revoked_at IS NULL`,
		tokenHash,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.IsStaff, &u.Groups, &u.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("authenticate token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("authenticate token: %w", err)
	}
	return &u, nil
}

// ListByUser retrieves a user's tokens with cursor-based pagination.
func (s *TokenService) ListByUser(ctx context.Context, userID string, limit int, cursor string) ([]model.APIToken, bool, error) {
	query := `SELECT id, user_id, name, token_prefix, created_at, revoked_at
		 FROM api_tokens WHERE user_id = $1`
	args := []any{userID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.APIToken
	for rows.Next() {
		var t model.APIToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.TokenPrefix, &t.CreatedAt, &t.RevokedAt); err != nil {
			return nil, false, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate tokens: %w", err)
	}

	hasMore := len(tokens) > limit
	if hasMore {
		tokens = tokens[:limit]
	}
	return tokens, hasMore, nil
}

// Revoke soft-deletes a token by setting revoked_at. Only the owning user's
// tokens are reachable.
func (s *TokenService) Revoke(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_tokens SET revoked_at = now()
		 WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("revoke token %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("revoke token %s: %w", id, ErrNotFound)
	}
	return nil
}
