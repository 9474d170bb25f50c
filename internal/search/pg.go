package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"task-search-backend/internal/tasks"
)

const searchTasksSQL = `
	SELECT id, title, priority, status, user_id, created_at, updated_at, similarity
	FROM search_tasks_by_similarity($1, $2, $3)
`

// PGSearcher calls the similarity procedure over a direct Postgres connection.
// The transaction runs as the authenticated role with the caller's claims so
// row-level policies apply exactly as they would for the platform's REST API.
type PGSearcher struct {
	db *sql.DB
}

func NewPGSearcher(db *sql.DB) *PGSearcher {
	return &PGSearcher{db: db}
}

func (s *PGSearcher) Search(ctx context.Context, q Query) ([]tasks.ScoredTask, error) {
	claims, err := json.Marshal(map[string]string{
		"sub":  q.UserID.String(),
		"role": "authenticated",
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT set_config('request.jwt.claims', $1, true)`, string(claims)); err != nil {
		return nil, fmt.Errorf("set claims: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `SET LOCAL ROLE authenticated`); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}

	rows, err := tx.QueryContext(ctx, searchTasksSQL, pgvector.NewVector(q.Embedding), q.Threshold, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	result := []tasks.ScoredTask{}
	for rows.Next() {
		var (
			t                tasks.ScoredTask
			priority, status string
		)
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&priority,
			&status,
			&t.UserID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		t.Priority = tasks.Priority(priority)
		t.Status = tasks.Status(status)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return result, nil
}
