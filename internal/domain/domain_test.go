package domain

import "testing"

func TestInferGroup(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		infobox string
		want    string
	}{
		{"path wins", "/pages/Hinatazaka46/kona.html", `<a href="/wiki/Nogizaka46">`, "Hinatazaka46"},
		{"infobox fallback", "/pages/kona.html", `<a href="/wiki/Sakurazaka46">`, "Sakurazaka46"},
		{"case insensitive", "/x/NOGIZAKA/a.html", "", "Nogizaka46"},
		{"no match", "/x/a.html", "<div></div>", ""},
	}

	for _, tt := range tests {
		if got := InferGroup(tt.path, tt.infobox); got != tt.want {
			t.Fatalf("%s: InferGroup() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPostCounterContinuesAcrossProfiles(t *testing.T) {
	counter := NewPostCounter()

	var posts []Post
	posts = counter.Append(posts, "Hinatazaka46", []string{"a", "b"})
	posts = counter.Append(posts, "Nogizaka46", nil)
	posts = counter.Append(posts, "Nogizaka46", []string{"c"})

	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i, p := range posts {
		if p.ID != i+1 {
			t.Fatalf("post %d has id %d", i, p.ID)
		}
	}
	if posts[2].IP != "Nogizaka46" || posts[2].Content != "c" {
		t.Fatalf("unexpected last post: %+v", posts[2])
	}
	if counter.Issued() != 3 {
		t.Fatalf("Issued() = %d, want 3", counter.Issued())
	}
}

func TestProfileFieldsSkipsEmpty(t *testing.T) {
	p := &MemberProfile{Name: "Kona Konoka", NameJP: "木野花", Birthday: "May 5, 2005"}

	fields := p.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d: %+v", len(fields), fields)
	}
	if fields[2].Label != "Birthday" {
		t.Fatalf("unexpected order: %+v", fields)
	}
	if p.DisplayName() != "木野花" {
		t.Fatalf("DisplayName() = %q", p.DisplayName())
	}
}
