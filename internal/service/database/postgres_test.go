package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/kapu/wiki-tweets-go/pkg/errors"
)

func TestPostgresConfigDSN(t *testing.T) {
	dsn := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "posts"}.DSN()
	for _, part := range []string{"host=db", "port=5433", "user=u", "password=p", "dbname=posts", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("DSN %q missing %q", dsn, part)
		}
	}
}

func TestNewPostgresServiceUnreachable(t *testing.T) {
	_, err := NewPostgresService(PostgresConfig{Host: "127.0.0.1", Port: 1, User: "u", Database: "d"}, nil)
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.Operation != "ping" {
		t.Fatalf("Operation = %q", svcErr.Operation)
	}
}

func TestSavePostsEmptyIsNoop(t *testing.T) {
	repo := &PostRepository{}
	if err := repo.SavePosts(context.Background(), "run", nil); err != nil {
		t.Fatalf("SavePosts(nil) error = %v", err)
	}
}
