package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session histories in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history_interactions (
			user_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			PRIMARY KEY (user_id, session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_interactions_user ON history_interactions (user_id, session_id);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, userID, sessionID string) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT prompt, response FROM history_interactions
		 WHERE user_id=$1 AND session_id=$2 ORDER BY seq`,
		userID, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session %s/%s: %w", userID, sessionID, err)
	}
	defer rows.Close()

	interactions := []Interaction{}
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.Prompt, &it.Response); err != nil {
			return nil, fmt.Errorf("scan session %s/%s: %w: %v", userID, sessionID, ErrCorrupt, err)
		}
		interactions = append(interactions, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session %s/%s: %w", userID, sessionID, err)
	}
	return interactions, nil
}

func (s *PostgresStore) Save(ctx context.Context, userID, sessionID string, interactions []Interaction) error {
	// Full overwrite inside one transaction keeps the session record atomic
	// from the reader's perspective.
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save %s/%s: %w", userID, sessionID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM history_interactions WHERE user_id=$1 AND session_id=$2`,
		userID, sessionID,
	); err != nil {
		return fmt.Errorf("clear session %s/%s: %w", userID, sessionID, err)
	}

	for i, it := range interactions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO history_interactions (user_id, session_id, seq, prompt, response)
			 VALUES ($1, $2, $3, $4, $5)`,
			userID, sessionID, i, it.Prompt, it.Response,
		); err != nil {
			return fmt.Errorf("write session %s/%s: %w", userID, sessionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session %s/%s: %w", userID, sessionID, err)
	}
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT session_id FROM history_interactions WHERE user_id=$1 ORDER BY session_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", userID, err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id for %s: %w", userID, err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions for %s: %w", userID, err)
	}
	return sessions, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
