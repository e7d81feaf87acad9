package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SearchResult represents a single search result across resource types.
type SearchResult struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Label   string `json:"label"`
	OwnerID string `json:"owner_id"`
	Status  string `json:"status,omitempty"`
}

// SearchService provides cross-resource search over recipients, messages
// and mailings, bounded by the caller's visibility scope.
type SearchService struct {
	db DB
}

// NewSearchService creates a new SearchService.
func NewSearchService(db DB) *SearchService {
	return &SearchService{db: db}
}

// Search runs parallel queries across resource tables and returns matching results.
func (s *SearchService) Search(ctx context.Context, scope Scope, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + query + "%"

	type queryDef struct {
		sql  string
		args []any
	}

	queries := []queryDef{
		{
			sql: `SELECT 'recipient', id, email, owner_id, '' FROM recipients
				WHERE ($1::bool OR owner_id = $2) AND (email ILIKE $3 OR full_name ILIKE $3)
				ORDER BY email LIMIT $4`,
			args: []any{scope.All, scope.ActorID, pattern, limit},
		},
		{
			sql: `SELECT 'message', id, subject, owner_id, '' FROM messages
				WHERE ($1::bool OR owner_id = $2) AND (subject ILIKE $3 OR body ILIKE $3)
				ORDER BY subject LIMIT $4`,
			args: []any{scope.All, scope.ActorID, pattern, limit},
		},
		{
			sql: `SELECT 'mailing', m.id, msg.subject, m.owner_id, m.status
				FROM mailings m JOIN messages msg ON m.message_id = msg.id
				WHERE ($1::bool OR m.owner_id = $2) AND (m.id ILIKE $3 OR msg.subject ILIKE $3)
				ORDER BY m.id LIMIT $4`,
			args: []any{scope.All, scope.ActorID, pattern, limit},
		},
	}

	results := make([][]SearchResult, len(queries))
	g, ctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			rows, err := s.db.Query(ctx, q.sql, q.args...)
			if err != nil {
				return fmt.Errorf("search query %d: %w", i, err)
			}
			defer rows.Close()

			for rows.Next() {
				var r SearchResult
				if err := rows.Scan(&r.Type, &r.ID, &r.Label, &r.OwnerID, &r.Status); err != nil {
					return fmt.Errorf("scan search result: %w", err)
				}
				results[i] = append(results[i], r)
			}
			return rows.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var all []SearchResult
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all, nil
}
