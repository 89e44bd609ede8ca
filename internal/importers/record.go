package importers

import (
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/normalize"
)

// cellFunc returns the raw cell mapped to a field, or "" when unmapped.
type cellFunc func(Field) string

// buildBook normalizes one row into a candidate book and its shelf names.
// dateAdded is used when the row has no usable date added.
func buildBook(cell cellFunc, dateAdded string) (entities.Book, []string) {
	title := normalize.Text(cell(FieldTitle))
	author := normalize.Text(cell(FieldAuthor))
	isbn := normalize.ISBN(cell(FieldISBN))
	isbn13 := normalize.ISBN(cell(FieldISBN13))
	dateRead := normalize.Date(cell(FieldDateRead))

	yearRead := normalize.Int(cell(FieldYearRead))
	if yearRead == nil {
		yearRead = normalize.YearOf(dateRead)
	}

	added := dateAdded
	if d := normalize.Date(cell(FieldDateAdded)); d != nil {
		added = *d
	}

	book := entities.Book{
		GoodreadsID:       normalize.Int64(cell(FieldGoodreadsID)),
		Title:             title,
		Author:            author,
		AuthorSort:        normalize.AuthorSort(cell(FieldAuthorSort), author),
		AdditionalAuthors: normalize.Text(cell(FieldAdditionalAuthors)),
		ISBN:              isbn,
		ISBN13:            isbn13,
		MyRating:          normalize.Rating(cell(FieldMyRating)),
		AverageRating:     normalize.Float(cell(FieldAverageRating)),
		Publisher:         normalize.Text(cell(FieldPublisher)),
		Binding:           normalize.Text(cell(FieldBinding)),
		Pages:             normalize.Int(cell(FieldPages)),
		BookType:          normalize.BookType(cell(FieldBookType)),
		YearPublished:     normalize.Int(cell(FieldYearPublished)),
		EditionPublished:  normalize.Int(cell(FieldEditionPublished)),
		DateRead:          dateRead,
		YearRead:          yearRead,
		DateAdded:         added,
		ExclusiveShelf:    normalize.ExclusiveShelf(cell(FieldExclusiveShelf)),
		MyReview:          normalize.Text(cell(FieldMyReview)),
		ReadCount:         normalize.ReadCount(cell(FieldReadCount)),
		OwnedCopies:       normalize.OwnedCopies(cell(FieldOwnedCopies)),
		CoverURL:          normalize.CoverURL(isbn13, isbn),
	}

	return book, normalize.Shelves(cell(FieldBookshelves))
}
