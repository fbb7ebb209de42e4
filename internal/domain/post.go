package domain

// Post is one output record. IP carries the group label the snippet is about.
type Post struct {
	ID      int    `json:"id"`
	IP      string `json:"ip"`
	Content string `json:"content"`
}

// PostCounter hands out batch-wide post IDs starting at 1.
type PostCounter struct {
	next int
}

func NewPostCounter() *PostCounter {
	return &PostCounter{next: 1}
}

// Append turns each snippet into a Post and appends it to posts.
func (c *PostCounter) Append(posts []Post, group string, snippets []string) []Post {
	for _, content := range snippets {
		posts = append(posts, Post{ID: c.next, IP: group, Content: content})
		c.next++
	}
	return posts
}

// Issued returns how many IDs have been handed out.
func (c *PostCounter) Issued() int {
	return c.next - 1
}
