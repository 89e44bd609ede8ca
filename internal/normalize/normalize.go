// Package normalize converts raw cell values from CSV exports into canonical
// typed values. Every function is total: invalid input maps to an absent or
// default value and never to an error.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/mrlokans/booklibrary/internal/entities"
)

// DateLayout is the canonical date format for stored dates.
const DateLayout = "2006-01-02"

// OpenLibraryCoversURL is the base of the Open Library covers API.
const OpenLibraryCoversURL = "https://covers.openlibrary.org"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
}

// Text trims surrounding whitespace.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}

// Key folds a string for case- and whitespace-insensitive comparison.
// Unicode is normalized to NFC first so composed and decomposed accents match.
func Key(raw string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(raw)))
}

// DedupeKey identifies a book by its folded title and author. Two books with
// the same key are duplicates.
func DedupeKey(title, author string) string {
	return Key(title) + "\x00" + Key(author)
}

// Date parses YYYY-MM-DD or YYYY/MM/DD and returns the canonical form.
// A trailing time component ("2024/03/01 10:00") is ignored.
func Date(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if i := strings.IndexAny(s, " T"); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			formatted := t.Format(DateLayout)
			return &formatted
		}
	}
	return nil
}

// YearOf extracts the calendar year from a canonical date.
func YearOf(date *string) *int {
	if date == nil {
		return nil
	}
	t, err := time.Parse(DateLayout, *date)
	if err != nil {
		return nil
	}
	year := t.Year()
	return &year
}

// Int parses the leading run of decimal digits ("320 pages" is 320).
func Int(raw string) *int {
	digits := leadingDigits(strings.TrimSpace(raw))
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// Int64 is Int for identifiers that may not fit in 32 bits.
func Int64(raw string) *int64 {
	digits := leadingDigits(strings.TrimSpace(raw))
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Float parses a leading decimal number such as "4.12".
func Float(raw string) *float64 {
	s := strings.TrimSpace(raw)
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c == '.' && !seenDot {
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}
	s = strings.TrimSuffix(s[:end], ".")
	if s == "" || s == "." {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Rating parses a 0..5 star rating. Missing or out of range values are 0.
func Rating(raw string) int {
	n := Int(raw)
	if n == nil || *n < 0 || *n > 5 {
		return 0
	}
	return *n
}

// ReadCount parses the number of times a book was read, defaulting to 0.
func ReadCount(raw string) int {
	return intOr(raw, 0)
}

// OwnedCopies parses the number of owned copies, defaulting to 1.
func OwnedCopies(raw string) int {
	return intOr(raw, 1)
}

// AuthorSort returns the sort key for an author. A supplied key wins; an
// author already containing a comma is kept; otherwise the last token moves
// to the front ("Jane Doe" becomes "Doe, Jane").
func AuthorSort(supplied, author string) string {
	if s := strings.TrimSpace(supplied); s != "" {
		return s
	}
	author = strings.TrimSpace(author)
	if author == "" || strings.Contains(author, ",") {
		return author
	}
	tokens := strings.Fields(author)
	if len(tokens) < 2 {
		return author
	}
	last := tokens[len(tokens)-1]
	return fmt.Sprintf("%s, %s", last, strings.Join(tokens[:len(tokens)-1], " "))
}

// Shelves splits a comma separated shelf list. Entries are trimmed, empty
// entries dropped and duplicates removed keeping the first occurrence.
func Shelves(raw string) []string {
	return ShelfList(strings.Split(raw, ","))
}

// ShelfList cleans shelf names that are already separate values, such as the
// entries of a JSON array. Names are not split, so a comma stays part of one.
func ShelfList(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range names {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// BookType matches raw against the book type enum, case-insensitively.
// "Graphic Novel" and "graphic-novel" are accepted; anything else is traditional.
func BookType(raw string) entities.BookType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for _, t := range entities.BookTypes {
		if s == string(t) {
			return t
		}
	}
	return entities.BookTypeTraditional
}

// ExclusiveShelf matches raw against the reading status enum. Unknown or
// empty values fall back to to-read.
func ExclusiveShelf(raw string) entities.ExclusiveShelf {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, shelf := range entities.ExclusiveShelves {
		if s == string(shelf) {
			return shelf
		}
	}
	return entities.ExclusiveShelfToRead
}

// ISBN strips spreadsheet guard characters (Goodreads writes ="0441013597").
func ISBN(raw string) string {
	return strings.TrimSpace(strings.NewReplacer("=", "", `"`, "").Replace(raw))
}

// CoverURL builds the Open Library cover URL, preferring ISBN-13.
func CoverURL(isbn13, isbn string) string {
	id := isbn13
	if id == "" {
		id = isbn
	}
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/b/isbn/%s-M.jpg", OpenLibraryCoversURL, id)
}

func intOr(raw string, def int) int {
	if n := Int(raw); n != nil {
		return *n
	}
	return def
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
