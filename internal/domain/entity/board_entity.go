package entity

import "time"

// Board is a text post.
type Board struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBoard builds an unsaved board.
func NewBoard(title, content, author string) *Board {
	return &Board{Title: title, Content: content, Author: author}
}

// Update replaces the editable fields. Author is fixed at creation.
func (b *Board) Update(title, content string) {
	b.Title = title
	b.Content = content
}

// BoardHit is one board search result.
type BoardHit struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}
