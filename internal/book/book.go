package book

import (
	"errors"
	"strings"

	"bookreview/internal/platform/booksapi"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

const (
	PlaceholderCoverURL = "https://via.placeholder.com/150x220?text=No+Image"
	UnknownAuthor       = "Unknown author"
	NoDescription       = "No description available."
	Untitled            = "Untitled"
)

// Book is the catalog view of a remote record, with display fallbacks applied.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors"`
	AuthorLine    string   `json:"author_line"`
	Description   string   `json:"description"`
	CoverURL      string   `json:"cover_url"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

func FromRemote(rb booksapi.Book) Book {
	authors := cleanList(rb.Authors)
	if len(authors) == 0 {
		if a := strings.TrimSpace(rb.Author); a != "" {
			authors = []string{a}
		}
	}

	return Book{
		ID:            rb.ID,
		Title:         orDefault(rb.Title, Untitled),
		Subtitle:      strings.TrimSpace(rb.Subtitle),
		Authors:       authors,
		AuthorLine:    AuthorLine(authors),
		Description:   orDefault(rb.Description, NoDescription),
		CoverURL:      CoverURL(rb),
		Publisher:     strings.TrimSpace(rb.Publisher),
		PublishedDate: strings.TrimSpace(rb.PublishedDate),
		PageCount:     rb.PageCount,
		Categories:    cleanList(rb.Categories),
	}
}

func FromRemoteList(rbs []booksapi.Book) []Book {
	books := make([]Book, 0, len(rbs))
	for _, rb := range rbs {
		books = append(books, FromRemote(rb))
	}
	return books
}

// CoverURL picks thumbnail, then smallThumbnail, then imageUrl, then the placeholder.
func CoverURL(rb booksapi.Book) string {
	if rb.ImageLinks != nil {
		if u := strings.TrimSpace(rb.ImageLinks.Thumbnail); u != "" {
			return u
		}
		if u := strings.TrimSpace(rb.ImageLinks.SmallThumbnail); u != "" {
			return u
		}
	}
	if u := strings.TrimSpace(rb.ImageURL); u != "" {
		return u
	}
	return PlaceholderCoverURL
}

func AuthorLine(authors []string) string {
	if len(authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(authors, ", ")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
