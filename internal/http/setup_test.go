package http

import (
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/database"
	"github.com/mrlokans/booklibrary/internal/database/books"
	"github.com/mrlokans/booklibrary/internal/database/shelves"
	"github.com/mrlokans/booklibrary/internal/entities"
)

type testLibrary struct {
	db      *database.Database
	books   *books.Repository
	shelves *shelves.Repository
}

// setupTestDB opens a file-backed database named after the test and removes
// it when the test ends.
func setupTestDB(t *testing.T, prefix string) *testLibrary {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_" + prefix + "_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewQuietDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return &testLibrary{
		db:      db,
		books:   books.NewRepository(db.DB),
		shelves: shelves.NewRepository(db.DB),
	}
}

func (l *testLibrary) addBook(t *testing.T, book entities.Book, shelfNames ...string) *entities.Book {
	t.Helper()
	if len(shelfNames) > 0 {
		ids, err := l.shelves.EnsureShelvesExist(shelfNames)
		require.NoError(t, err)
		book.ShelfIDs = ids
	}
	if book.BookType == "" {
		book.BookType = entities.BookTypeTraditional
	}
	if book.ExclusiveShelf == "" {
		book.ExclusiveShelf = entities.ExclusiveShelfToRead
	}
	if book.DateAdded == "" {
		book.DateAdded = "2024-01-01"
	}
	require.NoError(t, l.books.CreateBook(&book))
	return &book
}

func intPtr(v int) *int { return &v }

func uintString(v uint) string { return strconv.FormatUint(uint64(v), 10) }
