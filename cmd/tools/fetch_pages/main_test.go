package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestFetchAllSavesTitledPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		switch r.URL.Path {
		case "/wiki/Kosaka_Nao":
			_, _ = w.Write([]byte(`<html><body><h1 class="page-header__title">Kosaka Nao</h1></body></html>`))
		case "/wiki/Untitled":
			_, _ = w.Write([]byte(`<html><body><p>nothing</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out := t.TempDir()
	f := &fetcher{client: srv.Client(), outDir: out, logger: zap.NewNop()}

	saved := f.fetchAll(context.Background(), []string{
		srv.URL + "/wiki/Kosaka_Nao",
		srv.URL + "/wiki/Untitled",
		srv.URL + "/wiki/Missing",
	}, 2)
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}
	if _, err := os.Stat(filepath.Join(out, "kosaka-nao.html")); err != nil {
		t.Fatalf("expected kosaka-nao.html: %v", err)
	}
}

func TestPageTitleFallsBackToTitleTag(t *testing.T) {
	title, err := pageTitle([]byte(`<html><head><title>Kanemura Miku | Hinatazaka46 Wiki | Fandom</title></head></html>`))
	if err != nil {
		t.Fatalf("pageTitle() error = %v", err)
	}
	if title != "Kanemura Miku" {
		t.Fatalf("title = %q", title)
	}
}

func TestReadURLsSkipsCommentsAndDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# members\nhttps://a.example/1\n\nhttps://a.example/1\nhttps://a.example/2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	urls, err := readURLs(path)
	if err != nil {
		t.Fatalf("readURLs() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v", urls)
	}
}
