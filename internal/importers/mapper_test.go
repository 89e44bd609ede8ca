package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoDetectColumns_SimpleHeaders(t *testing.T) {
	detection := AutoDetectColumns([]string{"Title", "Author", "My Rating", "ISBN13"})

	assert.Equal(t, ColumnMapping{
		FieldTitle:    "Title",
		FieldAuthor:   "Author",
		FieldMyRating: "My Rating",
		FieldISBN13:   "ISBN13",
	}, detection.Mapping)
	assert.Equal(t, 4, detection.Matched)
	assert.Empty(t, detection.MissingRequired)
}

func TestAutoDetectColumns_GoodreadsExport(t *testing.T) {
	headers := []string{
		"Book Id", "Title", "Author", "Author l-f", "Additional Authors", "ISBN", "ISBN13",
		"My Rating", "Average Rating", "Publisher", "Binding", "Number of Pages", "Year Published",
		"Original Publication Year", "Date Read", "Date Added", "Bookshelves",
		"Bookshelves with positions", "Exclusive Shelf", "My Review", "Spoiler", "Private Notes",
		"Read Count", "Owned Copies",
	}

	m := AutoDetectColumns(headers).Mapping

	expected := map[Field]string{
		FieldGoodreadsID:       "Book Id",
		FieldTitle:             "Title",
		FieldAuthor:            "Author",
		FieldAuthorSort:        "Author l-f",
		FieldAdditionalAuthors: "Additional Authors",
		FieldISBN:              "ISBN",
		FieldISBN13:            "ISBN13",
		FieldMyRating:          "My Rating",
		FieldAverageRating:     "Average Rating",
		FieldPublisher:         "Publisher",
		FieldBinding:           "Binding",
		FieldPages:             "Number of Pages",
		FieldYearPublished:     "Year Published",
		FieldDateRead:          "Date Read",
		FieldDateAdded:         "Date Added",
		FieldBookshelves:       "Bookshelves",
		FieldExclusiveShelf:    "Exclusive Shelf",
		FieldMyReview:          "My Review",
		FieldReadCount:         "Read Count",
		FieldOwnedCopies:       "Owned Copies",
	}
	for field, header := range expected {
		assert.Equal(t, header, m[field], "field %s", field)
	}
}

func TestAutoDetectColumns_StoryGraphExport(t *testing.T) {
	headers := []string{
		"Title", "Authors", "Contributors", "ISBN/UID", "Format", "Read Status", "Date Added",
		"Last Date Read", "Dates Read", "Read Count", "Moods", "Pace", "Star Rating", "Review",
		"Tags", "Owned?",
	}

	m := AutoDetectColumns(headers).Mapping

	assert.Equal(t, "Title", m[FieldTitle])
	assert.Equal(t, "Authors", m[FieldAuthor])
	assert.Equal(t, "ISBN/UID", m[FieldISBN13])
	assert.Equal(t, "Format", m[FieldBinding])
	assert.Equal(t, "Read Status", m[FieldExclusiveShelf])
	assert.Equal(t, "Date Added", m[FieldDateAdded])
	assert.Equal(t, "Last Date Read", m[FieldDateRead])
	assert.Equal(t, "Read Count", m[FieldReadCount])
	assert.Equal(t, "Star Rating", m[FieldMyRating])
	assert.Equal(t, "Review", m[FieldMyReview])
	assert.Equal(t, "Tags", m[FieldBookshelves])
	assert.Equal(t, "Owned?", m[FieldOwnedCopies])

	for field, header := range m {
		assert.NotEqual(t, "Dates Read", header, "reading date range mapped to %s", field)
	}
}

func TestAutoDetectColumns_LibraryThingExport(t *testing.T) {
	headers := []string{
		"Book Id", "Title", "Primary Author", "Secondary Author", "Publication", "Date",
		"ISBN", "Page Count", "Rating", "Review", "Collections", "Tags",
	}

	m := AutoDetectColumns(headers).Mapping

	assert.Equal(t, "Primary Author", m[FieldAuthor])
	assert.Equal(t, "Secondary Author", m[FieldAdditionalAuthors])
	assert.Equal(t, "Publication", m[FieldPublisher])
	assert.Equal(t, "Date", m[FieldYearPublished])
	assert.Equal(t, "Page Count", m[FieldPages])
	assert.Equal(t, "Rating", m[FieldMyRating])
	_, ok := m[FieldDateRead]
	assert.False(t, ok, "publication date must not be taken as the date read")
}

func TestAutoDetectColumns_CaseAndWhitespace(t *testing.T) {
	m := AutoDetectColumns([]string{"  TITLE ", "author", "number of pages"}).Mapping

	assert.Equal(t, "TITLE", m[FieldTitle])
	assert.Equal(t, "author", m[FieldAuthor])
	assert.Equal(t, "number of pages", m[FieldPages])
}

func TestAutoDetectColumns_SubstringMatch(t *testing.T) {
	m := AutoDetectColumns([]string{"Book Title (original)", "Writer", "Total Pages"}).Mapping

	assert.Equal(t, "Book Title (original)", m[FieldTitle])
	assert.Equal(t, "Total Pages", m[FieldPages])
	_, ok := m[FieldAuthor]
	assert.False(t, ok, "no confident author match expected")
}

func TestAutoDetectColumns_RequiredLeftUnmapped(t *testing.T) {
	detection := AutoDetectColumns([]string{"Heading", "Creator", "Rating"})

	assert.ElementsMatch(t, []Field{FieldTitle, FieldAuthor}, detection.MissingRequired)
	assert.Equal(t, "Rating", detection.Mapping[FieldMyRating])
	assert.Equal(t, 1, detection.Matched)
}

func TestAutoDetectColumns_HeaderUsedOnce(t *testing.T) {
	// "Rating" scores for both my_rating (alias) and average_rating (substring).
	detection := AutoDetectColumns([]string{"Title", "Author", "Rating"})

	assert.Equal(t, "Rating", detection.Mapping[FieldMyRating])
	_, ok := detection.Mapping[FieldAverageRating]
	assert.False(t, ok)

	used := make(map[string]Field)
	for f, h := range detection.Mapping {
		prev, dup := used[h]
		assert.False(t, dup, "header %q mapped to %s and %s", h, prev, f)
		used[h] = f
	}
}

func TestAutoDetectColumns_Empty(t *testing.T) {
	detection := AutoDetectColumns(nil)

	assert.Empty(t, detection.Mapping)
	assert.Equal(t, 0, detection.Matched)
	assert.Len(t, detection.MissingRequired, 2)
}

func TestScoreHeader(t *testing.T) {
	title, _ := LookupField(FieldTitle)
	pages, _ := LookupField(FieldPages)

	assert.Equal(t, 1.0, ScoreHeader(title, "title"))
	assert.Equal(t, 1.0, ScoreHeader(pages, "Page Count"))
	assert.Greater(t, ScoreHeader(title, "Book Title (original)"), MinMatchScore)
	assert.Less(t, ScoreHeader(title, "Publisher"), MinMatchScore)

	published, _ := LookupField(FieldYearPublished)
	assert.Less(t, ScoreHeader(published, "Dates Read"), MinMatchScore)
	assert.Equal(t, 1.0, ScoreHeader(published, "Date"))
	assert.Equal(t, 0.0, ScoreHeader(title, "   "))
}
