package importers

// Field is a canonical book field key.
type Field string

const (
	FieldTitle             Field = "title"
	FieldAuthor            Field = "author"
	FieldAuthorSort        Field = "author_sort"
	FieldAdditionalAuthors Field = "additional_authors"
	FieldISBN              Field = "isbn"
	FieldISBN13            Field = "isbn13"
	FieldMyRating          Field = "my_rating"
	FieldAverageRating     Field = "average_rating"
	FieldPublisher         Field = "publisher"
	FieldBinding           Field = "binding"
	FieldPages             Field = "pages"
	FieldYearPublished     Field = "year_published"
	FieldEditionPublished  Field = "edition_published"
	FieldDateRead          Field = "date_read"
	FieldYearRead          Field = "year_read"
	FieldDateAdded         Field = "date_added"
	FieldExclusiveShelf    Field = "exclusive_shelf"
	FieldMyReview          Field = "my_review"
	FieldReadCount         Field = "read_count"
	FieldOwnedCopies       Field = "owned_copies"
	FieldBookshelves       Field = "bookshelves"
	FieldGoodreadsID       Field = "goodreads_id"
	FieldBookType          Field = "book_type"
)

// FieldSpec describes a canonical field for column detection and display.
type FieldSpec struct {
	Key      Field    `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Aliases  []string `json:"aliases,omitempty"`
}

// Fields lists the canonical fields in detection priority order.
// Earlier fields win ties when two fields score a header equally.
var Fields = []FieldSpec{
	{Key: FieldTitle, Label: "Title", Required: true, Aliases: []string{"Book Title", "Name"}},
	{Key: FieldAuthor, Label: "Author", Required: true, Aliases: []string{"Primary Author", "Authors", "Author Name"}},
	{Key: FieldAuthorSort, Label: "Author Sort", Aliases: []string{"Author l-f", "Author (By Last Name)", "Author Last First"}},
	{Key: FieldAdditionalAuthors, Label: "Additional Authors", Aliases: []string{"Secondary Author", "Other Authors"}},
	{Key: FieldISBN, Label: "ISBN", Aliases: []string{"ISBN-10", "ISBN10"}},
	{Key: FieldISBN13, Label: "ISBN13", Aliases: []string{"ISBN-13", "ISBN/UID", "EAN"}},
	{Key: FieldMyRating, Label: "My Rating", Aliases: []string{"Rating", "Star Rating", "Stars"}},
	{Key: FieldAverageRating, Label: "Average Rating", Aliases: []string{"Avg Rating", "Community Rating"}},
	{Key: FieldPublisher, Label: "Publisher", Aliases: []string{"Publication"}},
	{Key: FieldBinding, Label: "Binding", Aliases: []string{"Format", "Media"}},
	{Key: FieldPages, Label: "Pages", Aliases: []string{"Number of Pages", "Page Count", "Num Pages"}},
	{Key: FieldYearPublished, Label: "Year Published", Aliases: []string{"Original Publication Year", "Published", "Date"}},
	{Key: FieldEditionPublished, Label: "Edition Published"},
	{Key: FieldDateRead, Label: "Date Read", Aliases: []string{"Last Date Read", "Read Date", "Date Finished"}},
	{Key: FieldYearRead, Label: "Year Read"},
	{Key: FieldDateAdded, Label: "Date Added", Aliases: []string{"Added", "Entry Date"}},
	{Key: FieldExclusiveShelf, Label: "Exclusive Shelf", Aliases: []string{"Read Status", "Reading Status", "Status"}},
	{Key: FieldMyReview, Label: "My Review", Aliases: []string{"Review"}},
	{Key: FieldReadCount, Label: "Read Count", Aliases: []string{"Times Read"}},
	{Key: FieldOwnedCopies, Label: "Owned Copies", Aliases: []string{"Owned", "Copies"}},
	{Key: FieldBookshelves, Label: "Bookshelves", Aliases: []string{"Shelves", "Tags", "Collections"}},
	{Key: FieldGoodreadsID, Label: "Goodreads ID", Aliases: []string{"Book Id"}},
	{Key: FieldBookType, Label: "Book Type", Aliases: []string{"Type"}},
}

// RequiredFields returns the fields every import mapping must contain.
func RequiredFields() []Field {
	var required []Field
	for _, f := range Fields {
		if f.Required {
			required = append(required, f.Key)
		}
	}
	return required
}

// LookupField returns the spec for a canonical key.
func LookupField(key Field) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}
