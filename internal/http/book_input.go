package http

import (
	"strings"
	"time"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/normalize"
)

// BookInput is the payload for creating or replacing a book by hand.
type BookInput struct {
	Title             string   `json:"title" validate:"notblank,max=512"`
	Author            string   `json:"author" validate:"notblank,max=256"`
	AuthorSort        string   `json:"author_sort" validate:"max=256"`
	AdditionalAuthors string   `json:"additional_authors" validate:"max=512"`
	ISBN              string   `json:"isbn" validate:"max=20"`
	ISBN13            string   `json:"isbn13" validate:"max=20"`
	MyRating          int      `json:"my_rating" validate:"gte=0,lte=5"`
	AverageRating     *float64 `json:"average_rating" validate:"omitempty,gte=0,lte=5"`
	Publisher         string   `json:"publisher" validate:"max=256"`
	Binding           string   `json:"binding" validate:"max=64"`
	Pages             *int     `json:"pages" validate:"omitempty,gte=0"`
	BookType          string   `json:"book_type" validate:"omitempty,oneof=traditional graphic_novel"`
	YearPublished     *int     `json:"year_published"`
	EditionPublished  *int     `json:"edition_published"`
	DateRead          string   `json:"date_read" validate:"omitempty,date"`
	DateAdded         string   `json:"date_added" validate:"omitempty,date"`
	ExclusiveShelf    string   `json:"exclusive_shelf" validate:"omitempty,oneof=to-read currently-reading read shelved to-read-non-fiction"`
	MyReview          string   `json:"my_review"`
	ReadCount         *int     `json:"read_count" validate:"omitempty,gte=0"`
	OwnedCopies       *int     `json:"owned_copies" validate:"omitempty,gte=0"`
	CoverURL          string   `json:"cover_url" validate:"omitempty,url"`
	Shelves           []string `json:"shelves" validate:"dive,max=255"`
}

// ToBook builds a normalized book from validated input. Defaults match those
// of a CSV import: traditional, to-read, added today, one owned copy and an
// Open Library cover derived from the ISBN.
func (in BookInput) ToBook(now time.Time) entities.Book {
	book := entities.Book{
		Title:             normalize.Text(in.Title),
		Author:            normalize.Text(in.Author),
		AdditionalAuthors: normalize.Text(in.AdditionalAuthors),
		ISBN:              normalize.ISBN(in.ISBN),
		ISBN13:            normalize.ISBN(in.ISBN13),
		MyRating:          in.MyRating,
		AverageRating:     in.AverageRating,
		Publisher:         normalize.Text(in.Publisher),
		Binding:           normalize.Text(in.Binding),
		Pages:             in.Pages,
		BookType:          normalize.BookType(in.BookType),
		YearPublished:     in.YearPublished,
		EditionPublished:  in.EditionPublished,
		DateRead:          normalize.Date(in.DateRead),
		ExclusiveShelf:    normalize.ExclusiveShelf(in.ExclusiveShelf),
		MyReview:          strings.TrimSpace(in.MyReview),
		ReadCount:         0,
		OwnedCopies:       1,
		CoverURL:          strings.TrimSpace(in.CoverURL),
	}

	book.AuthorSort = normalize.AuthorSort(in.AuthorSort, book.Author)
	book.YearRead = normalize.YearOf(book.DateRead)

	if added := normalize.Date(in.DateAdded); added != nil {
		book.DateAdded = *added
	} else {
		book.DateAdded = now.Format("2006-01-02")
	}
	if in.ReadCount != nil {
		book.ReadCount = *in.ReadCount
	}
	if in.OwnedCopies != nil {
		book.OwnedCopies = *in.OwnedCopies
	}
	if book.CoverURL == "" {
		book.CoverURL = normalize.CoverURL(book.ISBN13, book.ISBN)
	}

	return book
}

// ShelfNames returns the trimmed, de-duplicated shelf names of the input.
func (in BookInput) ShelfNames() []string {
	return normalize.ShelfList(in.Shelves)
}
