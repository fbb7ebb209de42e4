package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/domain"
)

const createSnippetPostsTable = `
	CREATE TABLE IF NOT EXISTS snippet_posts (
		id         BIGSERIAL PRIMARY KEY,
		run_id     UUID        NOT NULL,
		post_id    INTEGER     NOT NULL,
		ip         TEXT        NOT NULL,
		content    TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (run_id, post_id)
	)
`

const insertSnippetPost = `
	INSERT INTO snippet_posts (run_id, post_id, ip, content)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (run_id, post_id) DO UPDATE
	SET ip = EXCLUDED.ip, content = EXCLUDED.content
`

// PostRepository persists the posts of a batch run.
type PostRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostRepository(postgres *PostgresService, logger *zap.Logger) *PostRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

func (r *PostRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSnippetPostsTable); err != nil {
		return fmt.Errorf("failed to create snippet_posts table: %w", err)
	}
	return nil
}

// SavePosts stores all posts of one run in a single transaction.
func (r *PostRepository) SavePosts(ctx context.Context, runID string, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSnippetPost)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, post := range posts {
		if _, err := stmt.ExecContext(ctx, runID, post.ID, post.IP, post.Content); err != nil {
			return fmt.Errorf("failed to insert post %d: %w", post.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	r.logger.Info("Posts saved",
		zap.String("run_id", runID),
		zap.Int("count", len(posts)),
	)
	return nil
}
