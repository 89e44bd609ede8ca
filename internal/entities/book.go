package entities

import (
	"time"
)

type BookType string

const (
	BookTypeTraditional  BookType = "traditional"
	BookTypeGraphicNovel BookType = "graphic_novel"
)

// BookTypes lists every supported book type; the first entry is the default.
var BookTypes = []BookType{BookTypeTraditional, BookTypeGraphicNovel}

type ExclusiveShelf string

const (
	ExclusiveShelfToRead           ExclusiveShelf = "to-read"
	ExclusiveShelfCurrentlyReading ExclusiveShelf = "currently-reading"
	ExclusiveShelfRead             ExclusiveShelf = "read"
	ExclusiveShelfShelved          ExclusiveShelf = "shelved"
	ExclusiveShelfToReadNonFiction ExclusiveShelf = "to-read-non-fiction"
)

// ExclusiveShelves lists every reading status a book can have.
var ExclusiveShelves = []ExclusiveShelf{
	ExclusiveShelfToRead,
	ExclusiveShelfCurrentlyReading,
	ExclusiveShelfRead,
	ExclusiveShelfShelved,
	ExclusiveShelfToReadNonFiction,
}

// Book is a normalized library entry. Optional numeric fields are pointers so
// that "absent" and zero stay distinguishable; dates are stored as YYYY-MM-DD.
type Book struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	GoodreadsID       *int64         `gorm:"index" json:"goodreads_id,omitempty"`
	Title             string         `gorm:"index;size:512;not null" json:"title"`
	Author            string         `gorm:"index;size:256;not null" json:"author"`
	AuthorSort        string         `gorm:"index;size:256" json:"author_sort"`
	AdditionalAuthors string         `gorm:"size:512" json:"additional_authors,omitempty"`
	ISBN              string         `gorm:"index;size:20" json:"isbn,omitempty"`
	ISBN13            string         `gorm:"index;size:20" json:"isbn13,omitempty"`
	MyRating          int            `json:"my_rating"`
	AverageRating     *float64       `json:"average_rating,omitempty"`
	Publisher         string         `gorm:"size:256" json:"publisher,omitempty"`
	Binding           string         `gorm:"size:64" json:"binding,omitempty"`
	Pages             *int           `json:"pages,omitempty"`
	BookType          BookType       `gorm:"size:20;index" json:"book_type"`
	YearPublished     *int           `json:"year_published,omitempty"`
	EditionPublished  *int           `json:"edition_published,omitempty"`
	DateRead          *string        `gorm:"size:10" json:"date_read,omitempty"`
	YearRead          *int           `gorm:"index" json:"year_read,omitempty"`
	DateAdded         string         `gorm:"size:10;index" json:"date_added"`
	ExclusiveShelf    ExclusiveShelf `gorm:"size:32;index" json:"exclusive_shelf"`
	MyReview          string         `gorm:"type:text" json:"my_review,omitempty"`
	ReadCount         int            `json:"read_count"`
	OwnedCopies       int            `json:"owned_copies"`
	CoverURL          string         `gorm:"size:2048" json:"cover_url,omitempty"`
	OpenLibraryKey    string         `gorm:"size:64" json:"open_library_key,omitempty"`
	DedupeKey         string         `gorm:"index;size:800" json:"-"`
	Shelves           []Shelf        `gorm:"many2many:book_shelves;" json:"shelves,omitempty"`
	BEq               *float64       `gorm:"->;-:migration;column:beq" json:"beq"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// ShelfIDs lists existing shelves to link the book to.
	ShelfIDs []uint `gorm:"-" json:"-"`
	// NewShelves names shelves the store creates when missing and links in
	// the same transaction that writes the book.
	NewShelves []string `gorm:"-" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// IsRead reports whether the book sits on the "read" exclusive shelf.
func (b *Book) IsRead() bool {
	return b.ExclusiveShelf == ExclusiveShelfRead
}

// PageCount returns the page count, or 0 when it is unknown.
func (b *Book) PageCount() int {
	if b.Pages == nil {
		return 0
	}
	return *b.Pages
}

// ShelfNames returns the names of the free-form shelves attached to the book.
func (b *Book) ShelfNames() []string {
	names := make([]string, 0, len(b.Shelves))
	for _, s := range b.Shelves {
		names = append(names, s.Name)
	}
	return names
}

// Shelf is a free-form, non-exclusive label. Names are unique.
type Shelf struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Books       []Book    `gorm:"many2many:book_shelves;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Shelf) TableName() string {
	return "shelves"
}

// Book sort keys accepted by BookFilter.Sort. Anything else sorts by date added.
const (
	SortTitle         = "title"
	SortAuthor        = "author"
	SortMyRating      = "my_rating"
	SortPages         = "pages"
	SortBEq           = "beq"
	SortDateRead      = "date_read"
	SortYearPublished = "year_published"
	SortAverageRating = "average_rating"
	SortDateAdded     = "date_added"
)

// BookFilter selects one page of the library. Empty strings and "all" disable
// the corresponding filter.
type BookFilter struct {
	Search         string
	Shelf          string
	ExclusiveShelf string
	Sort           string
	Ascending      bool
	Page           int
	Limit          int
}

// BookPage is one page of books plus the number of books matching the filter.
type BookPage struct {
	Books []Book `json:"books"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// ShelfWithCount is a shelf together with the number of books on it.
type ShelfWithCount struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"`
}

// ExclusiveShelfCount is the number of books with a given reading status.
type ExclusiveShelfCount struct {
	Shelf ExclusiveShelf `json:"shelf"`
	Count int64          `json:"count"`
}
