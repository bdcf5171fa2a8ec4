package book

import (
	"strings"
	"time"

	"bookreview/internal/pagination"
	"bookreview/internal/review"
	"bookreview/internal/store"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = store.NotFound("Book not found")

// Book represents a book entity. AverageRating and TotalReviews are derived
// from its reviews and never set by clients.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"notblank,max=300"`
	Author        string    `json:"author" validate:"notblank,max=200"`
	Description   string    `json:"description" validate:"notblank"`
	PublishedYear *int      `json:"publishedYear,omitempty" validate:"omitempty,gte=0,lte=9999"`
	ISBN          *string   `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Genre         []string  `json:"genre"`
	AverageRating float64   `json:"averageRating"`
	TotalReviews  int       `json:"totalReviews"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Detail is a book with the requested page of its reviews embedded.
type Detail struct {
	Book
	Reviews pagination.Page[review.Review] `json:"reviews"`
}

// Input is the client-authored part of a new book.
type Input struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	PublishedYear *int     `json:"publishedYear"`
	ISBN          *string  `json:"isbn"`
	Genre         []string `json:"genre"`
}

// Patch changes the fields that are set.
type Patch struct {
	Title         *string   `json:"title"`
	Author        *string   `json:"author"`
	Description   *string   `json:"description"`
	PublishedYear *int      `json:"publishedYear"`
	ISBN          *string   `json:"isbn"`
	Genre         *[]string `json:"genre"`
}

// Apply merges p into b.
func (p Patch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.PublishedYear != nil {
		b.PublishedYear = p.PublishedYear
	}
	if p.ISBN != nil {
		b.ISBN = p.ISBN
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
}

// Filter narrows a book listing.
type Filter struct {
	Author string
	Genres []string
	// Search matches title or author.
	Search string
}

func (b *Book) normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Description = strings.TrimSpace(b.Description)
	if b.ISBN != nil {
		isbn := strings.TrimSpace(*b.ISBN)
		if isbn == "" {
			b.ISBN = nil
		} else {
			b.ISBN = &isbn
		}
	}
	genres := make([]string, 0, len(b.Genre))
	for _, g := range b.Genre {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	b.Genre = genres
}
