package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/stats"
)

const goodreadsCSV = `Book Id,Title,Author,Author l-f,My Rating,Number of Pages,Exclusive Shelf,Bookshelves
1,Dune,Frank Herbert,"Herbert, Frank",5,412,read,"sci-fi, classics"
2,Hyperion,Dan Simmons,"Simmons, Dan",4,482,to-read,sci-fi
3,Emma,Jane Austen,"Austen, Jane",0,474,to-read,
`

type testEnv struct {
	dir    string
	dbPath string
	csv    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("COVERS_CACHE_DIR", filepath.Join(dir, "covers"))
	t.Setenv("AUDIT_DIR", filepath.Join(dir, "audit"))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "env.db"))

	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(goodreadsCSV), 0644))

	return &testEnv{dir: dir, dbPath: filepath.Join(dir, "library.db"), csv: csvPath}
}

// run executes the command line and returns stdout and stderr.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--db", e.dbPath))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestImportCommand(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "import", env.csv)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 3")
	assert.Contains(t, out, "Run ID: ")

	out, _, err = env.run(t, "import", env.csv, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 0")
	assert.Contains(t, out, "Skipped: 3 (3 duplicates, 0 missing required fields)")
	assert.Contains(t, out, `row 2: "Dune" - duplicate`)

	_, err = os.Stat(filepath.Join(env.dir, "env.db"))
	assert.True(t, os.IsNotExist(err), "--db should take precedence over DATABASE_PATH")
}

func TestImportCommand_DryRun(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "import", env.csv, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.Contains(t, out, "Would import: 3")

	out, _, err = env.run(t, "stats", "--json")
	require.NoError(t, err)
	var snapshot stats.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, 0, snapshot.TotalBooks)
}

func TestImportCommand_MappingFile(t *testing.T) {
	env := newTestEnv(t)

	mappingPath := filepath.Join(env.dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(mappingPath, []byte("title: Title\nauthor: Author\n"), 0644))

	out, _, err := env.run(t, "import", env.csv, "--mapping", mappingPath, "--save-mapping")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 3")
	assert.Contains(t, out, "Column mapping saved")

	out, _, err = env.run(t, "import", env.csv, "--use-saved-mapping", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would import: 0")
}

func TestImportCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "import", env.csv, "--use-saved-mapping")
	assert.ErrorContains(t, err, "no saved column mapping")

	mappingPath := filepath.Join(env.dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(mappingPath, []byte("title: Title\n"), 0644))
	_, _, err = env.run(t, "import", env.csv, "--mapping", mappingPath)
	assert.ErrorContains(t, err, "column mapping is incomplete")

	require.NoError(t, os.WriteFile(mappingPath, []byte("colour: Title\n"), 0644))
	_, _, err = env.run(t, "import", env.csv, "--mapping", mappingPath)
	assert.ErrorContains(t, err, "unknown fields in column mapping: colour")

	_, _, err = env.run(t, "import", filepath.Join(env.dir, "missing.csv"))
	assert.ErrorContains(t, err, "failed to read CSV file")

	_, _, err = env.run(t, "import")
	assert.Error(t, err)
}

func TestDetectCommand(t *testing.T) {
	env := newTestEnv(t)

	out, errOut, err := env.run(t, "detect", env.csv)
	require.NoError(t, err)
	assert.Contains(t, out, "title: Title")
	assert.Contains(t, out, "author: Author")
	assert.Contains(t, out, "my_rating: My Rating")
	assert.Contains(t, errOut, "Matched")
	assert.NotContains(t, errOut, "WARNING")
}

func TestDetectCommand_MissingRequired(t *testing.T) {
	env := newTestEnv(t)
	csvPath := filepath.Join(env.dir, "odd.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Book Title,Pages\nDune,412\n"), 0644))

	_, errOut, err := env.run(t, "detect", csvPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "WARNING: no column found for required fields: author")
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.run(t, "import", env.csv)
	require.NoError(t, err)

	out, _, err := env.run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Books: 3 (1 read)")
	assert.Contains(t, out, "Total BEq: 1.00")
	assert.Contains(t, out, "5 stars: 1")

	out, _, err = env.run(t, "stats", "--json")
	require.NoError(t, err)
	var snapshot stats.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, 3, snapshot.TotalBooks)
	assert.Equal(t, 1, snapshot.TotalRead)
	assert.InDelta(t, 5.0, snapshot.AvgRating, 0.001)
}

func TestLookupCommand(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("bibkeys") == "ISBN:9780441013593" {
			_, _ = w.Write([]byte(`{"ISBN:9780441013593": {"title": "Dune", "authors": [{"name": "Frank Herbert"}], "number_of_pages": 412}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()
	t.Setenv("OPENLIBRARY_BASE_URL", server.URL)
	t.Setenv("METADATA_REQUESTS_PER_SECOND", "0")

	out, _, err := env.run(t, "lookup", "978-0-441-01359-3")
	require.NoError(t, err)
	assert.Contains(t, out, "Title:     Dune")
	assert.Contains(t, out, "Frank Herbert")
	assert.Contains(t, out, "Pages:     412")

	_, _, err = env.run(t, "lookup", "9780134685991")
	assert.ErrorContains(t, err, "no Open Library record")
}

func TestEnrichCommand_Args(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "enrich")
	assert.Error(t, err)

	_, _, err = env.run(t, "enrich", "42", "--all")
	assert.Error(t, err)

	_, _, err = env.run(t, "enrich", "abc")
	assert.ErrorContains(t, err, "invalid book ID")
}

func TestEnrichCommand_AllWithNothingMissing(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "enrich", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Books checked: 0")
}

func TestFixCoversCommand_EmptyLibrary(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "fix-covers")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 0 books, fixed 0 covers")
}
