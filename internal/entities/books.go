package entities

import "strings"

// UnknownAuthor is shown when a book carries no author names.
const UnknownAuthor = "Unknown Author"

// Book is a catalog volume as returned by the remote API. It is never
// persisted locally.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"pageCount,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Miniature     string   `json:"miniature,omitempty"`
	ISBN13        string   `json:"isbn13,omitempty"`
	ISBN10        string   `json:"isbn10,omitempty"`
}

// Cover prefers the miniature and falls back to the thumbnail.
func (b Book) Cover() string {
	if b.Miniature != "" {
		return b.Miniature
	}
	return b.Thumbnail
}

// AuthorsText joins the author names in their original order.
func (b Book) AuthorsText() string {
	return joinAuthors(b.Authors)
}

// HasTitle reports whether the title is non-blank.
func (b Book) HasTitle() bool {
	return strings.TrimSpace(b.Title) != ""
}

// FavoriteEntry links the current user to a book. Title, cover and authors
// are a denormalized copy kept for display.
type FavoriteEntry struct {
	VolumeID  string   `json:"volumeId"`
	Title     string   `json:"title"`
	Miniature string   `json:"miniature,omitempty"`
	Authors   []string `json:"authors,omitempty"`
}

func (f FavoriteEntry) AuthorsText() string {
	return joinAuthors(f.Authors)
}

// NewFavoriteEntry copies the display metadata of a book.
func NewFavoriteEntry(b Book) FavoriteEntry {
	return FavoriteEntry{
		VolumeID:  b.ID,
		Title:     b.Title,
		Miniature: b.Cover(),
		Authors:   append([]string(nil), b.Authors...),
	}
}

func joinAuthors(authors []string) string {
	if len(authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(authors, ", ")
}
