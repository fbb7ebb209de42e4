package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kapu/wiki-tweets-go/internal/domain"
	"github.com/kapu/wiki-tweets-go/internal/service/ai"
	"github.com/kapu/wiki-tweets-go/internal/service/wiki"
)

type fakeExtractor struct {
	profiles map[string]*domain.MemberProfile
	errs     map[string]error
	panics   map[string]bool
}

func (f *fakeExtractor) Extract(path string) (*domain.MemberProfile, error) {
	base := filepath.Base(path)
	if f.panics[base] {
		panic("malformed document")
	}
	if err := f.errs[base]; err != nil {
		return nil, err
	}
	if p, ok := f.profiles[base]; ok {
		return p, nil
	}
	return &domain.MemberProfile{}, nil
}

type fakeGenerator struct {
	perProfile map[string][]string
	calls      []string
}

func (f *fakeGenerator) Generate(_ context.Context, profile *domain.MemberProfile) ([]string, *ai.GenerateMetadata) {
	f.calls = append(f.calls, profile.Name)
	if snippets, ok := f.perProfile[profile.Name]; ok {
		return snippets, &ai.GenerateMetadata{Provider: "fake"}
	}
	return []string{profile.Name + " intro"}, &ai.GenerateMetadata{Provider: "fake"}
}

type fakeSink struct {
	runID string
	posts []domain.Post
	err   error
}

func (f *fakeSink) SavePosts(_ context.Context, runID string, posts []domain.Post) error {
	f.runID = runID
	f.posts = posts
	return f.err
}

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("<html></html>"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func readPosts(t *testing.T, path string) []domain.Post {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var posts []domain.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return posts
}

func TestRunSkipsFailuresAndKeepsContinuousIDs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.html", "b.html", "c.html", "sub/d.html", "notes.txt", "e.HTML")

	extractor := &fakeExtractor{
		profiles: map[string]*domain.MemberProfile{
			"a.html": {Name: "Alpha", Group: "Nogizaka46"},
			"c.html": {Name: "Gamma"},
			"d.html": {Name: "Delta", Group: "Sakurazaka46"},
			"e.HTML": {Name: ""},
		},
		panics: map[string]bool{"b.html": true},
	}
	generator := &fakeGenerator{perProfile: map[string][]string{
		"Alpha": {"a1", "a2"},
		"Delta": {"d1", "d2", "d3"},
	}}
	sink := &fakeSink{}

	p := NewProcessor(extractor, generator, nil, WithSink(sink))
	result, err := p.RunDetailed(context.Background(), root, "")
	if err != nil {
		t.Fatalf("RunDetailed() error = %v", err)
	}

	wantContent := []string{"a1", "a2", "Gamma intro", "d1", "d2", "d3"}
	if len(result.Posts) != len(wantContent) {
		t.Fatalf("expected %d posts, got %+v", len(wantContent), result.Posts)
	}
	for i, post := range result.Posts {
		if post.ID != i+1 {
			t.Fatalf("post %d has id %d", i, post.ID)
		}
		if post.Content != wantContent[i] {
			t.Fatalf("post %d content = %q, want %q", i, post.Content, wantContent[i])
		}
	}
	if result.Posts[2].IP != "Hinatazaka46" {
		t.Fatalf("missing group should fall back to default, got %q", result.Posts[2].IP)
	}
	if result.Posts[3].IP != "Sakurazaka46" {
		t.Fatalf("IP = %q", result.Posts[3].IP)
	}

	if result.Documents != 5 || result.Failed != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", result)
	}
	if strings.Join(generator.calls, ",") != "Alpha,Gamma,Delta" {
		t.Fatalf("generator calls = %v", generator.calls)
	}

	written := readPosts(t, filepath.Join(root, "tweets_output.json"))
	if len(written) != 6 || written[5].ID != 6 {
		t.Fatalf("unexpected written posts: %+v", written)
	}

	if sink.runID != result.RunID || len(sink.posts) != 6 {
		t.Fatalf("sink not called with run posts: %q %d", sink.runID, len(sink.posts))
	}
}

func TestRunExtractErrorDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.html", "b.html")

	extractor := &fakeExtractor{
		profiles: map[string]*domain.MemberProfile{"b.html": {Name: "Beta"}},
		errs:     map[string]error{"a.html": errors.New("read failed")},
	}

	posts, err := NewProcessor(extractor, &fakeGenerator{}, nil).Run(context.Background(), root, "out.json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(posts) != 1 || posts[0].ID != 1 || posts[0].Content != "Beta intro" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestRunWithoutDocumentsWritesNothing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "readme.md")

	posts, err := NewProcessor(&fakeExtractor{}, &fakeGenerator{}, nil).Run(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", posts)
	}
	if _, err := os.Stat(filepath.Join(root, "tweets_output.json")); !os.IsNotExist(err) {
		t.Fatalf("output file should not exist: %v", err)
	}
}

func TestRunMissingRootFails(t *testing.T) {
	_, err := NewProcessor(&fakeExtractor{}, &fakeGenerator{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	if err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestRunSinkErrorIsNotFatal(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.html")

	extractor := &fakeExtractor{profiles: map[string]*domain.MemberProfile{"a.html": {Name: "Alpha"}}}
	sink := &fakeSink{err: errors.New("db down")}

	posts, err := NewProcessor(extractor, &fakeGenerator{}, nil, WithSink(sink)).Run(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestWritePostsKeepsUnicodeAndHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	posts := []domain.Post{{ID: 1, IP: "Hinatazaka46", Content: "🎂 <木野花> & ファン"}}

	if err := WritePosts(path, posts); err != nil {
		t.Fatalf("WritePosts() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "🎂 <木野花> & ファン") {
		t.Fatalf("content was escaped: %s", text)
	}
	if !strings.Contains(text, "\n  {\n    \"id\": 1,") {
		t.Fatalf("unexpected indentation: %s", text)
	}
}

func TestPreviewLimitsDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "1.html", "2.html", "3.html", "4.html", "5.html", "6.html", "7.html")

	extractor := &fakeExtractor{profiles: map[string]*domain.MemberProfile{"1.html": {Name: "One"}}}
	generator := &fakeGenerator{}

	result, err := NewProcessor(extractor, generator, nil).Preview(context.Background(), root, 5)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if result.Total != 7 || len(result.Entries) != 5 {
		t.Fatalf("unexpected preview: total=%d entries=%d", result.Total, len(result.Entries))
	}
	if result.Entries[0].Profile.Name != "One" {
		t.Fatalf("entries not in lexical order: %+v", result.Entries[0])
	}
	if len(generator.calls) != 0 {
		t.Fatalf("preview must not generate")
	}
}

func TestRunEndToEndWithTemplateFallback(t *testing.T) {
	root := t.TempDir()
	page := `<html><body><h1 class="page-header__title">Kona Konoka</h1>
<aside class="portable-infobox">
<div class="pi-data"><h3 class="pi-data-label">Birthday</h3><div class="pi-data-value">March 3, 2000</div></div>
</aside></body></html>`
	if err := os.WriteFile(filepath.Join(root, "kona.html"), []byte(page), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "empty.html"), []byte("<html><body></body></html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cascade := ai.NewCascade(nil, nil, nil)
	posts, err := NewProcessor(wiki.NewExtractor(0, nil), cascade, nil).Run(context.Background(), root, "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected intro and birthday posts, got %+v", posts)
	}
	if !strings.Contains(posts[0].Content, "Kona Konoka") {
		t.Fatalf("intro missing name: %q", posts[0].Content)
	}
	if !strings.Contains(posts[1].Content, "March 3, 2000") {
		t.Fatalf("birthday post missing date: %q", posts[1].Content)
	}
}
