package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booklibrary/internal/covers"
	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/metadata"
)

type mockEnricher struct {
	bookCalls []uint
	isbnCalls []string
	result    *metadata.EnrichmentResult
	bulk      *metadata.BulkEnrichmentResult
	err       error
}

func (m *mockEnricher) EnrichBook(ctx context.Context, bookID uint) (*metadata.EnrichmentResult, error) {
	m.bookCalls = append(m.bookCalls, bookID)
	return m.result, m.err
}

func (m *mockEnricher) EnrichBookWithISBN(ctx context.Context, bookID uint, isbn string) (*metadata.EnrichmentResult, error) {
	m.isbnCalls = append(m.isbnCalls, isbn)
	return m.result, m.err
}

func (m *mockEnricher) EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error) {
	return m.bulk, m.err
}

type enrichCall struct {
	description string
	bookID      uint
	err         error
}

type mockAuditor struct {
	enrichCalls []enrichCall
	coverCalls  [][2]int
	retention   time.Duration
	deleted     int64
}

func (m *mockAuditor) LogMetadataEnrich(description string, bookID uint, err error) {
	m.enrichCalls = append(m.enrichCalls, enrichCall{description, bookID, err})
}

func (m *mockAuditor) LogCoverFix(checked, fixed int, err error) {
	m.coverCalls = append(m.coverCalls, [2]int{checked, fixed})
}

func (m *mockAuditor) DeleteOldEvents(retention time.Duration) (int64, error) {
	m.retention = retention
	return m.deleted, nil
}

type mockCoverFixer struct {
	result *covers.FixCoversResult
	err    error
}

func (m *mockCoverFixer) FixCovers(ctx context.Context) (*covers.FixCoversResult, error) {
	return m.result, m.err
}

type mockShelfCleaner struct {
	calls int
}

func (m *mockShelfCleaner) DeleteOrphanShelves() (int64, error) {
	m.calls++
	return 2, nil
}

func TestEnrichBookProcessor(t *testing.T) {
	enricher := &mockEnricher{result: &metadata.EnrichmentResult{
		Book:          &entities.Book{ID: 7, Title: "Dune"},
		FieldsUpdated: []string{"publisher"},
		SearchMethod:  "isbn",
	}}
	auditor := &mockAuditor{}
	process := EnrichBookProcessor(enricher, auditor)

	require.NoError(t, process(context.Background(), EnrichBookTask{BookID: 7}))
	require.NoError(t, process(context.Background(), EnrichBookTask{BookID: 7, ISBN: "9780441013593"}))

	assert.Equal(t, []uint{7}, enricher.bookCalls)
	assert.Equal(t, []string{"9780441013593"}, enricher.isbnCalls)
	require.Len(t, auditor.enrichCalls, 2)
	assert.Equal(t, uint(7), auditor.enrichCalls[0].bookID)
	assert.Contains(t, auditor.enrichCalls[0].description, "Dune")
}

func TestEnrichBookProcessor_Error(t *testing.T) {
	auditor := &mockAuditor{}
	process := EnrichBookProcessor(&mockEnricher{err: errors.New("not found")}, auditor)

	err := process(context.Background(), EnrichBookTask{BookID: 3})
	require.Error(t, err)
	require.Len(t, auditor.enrichCalls, 1)
	assert.Error(t, auditor.enrichCalls[0].err)
}

func TestEnrichBookProcessor_NotConfigured(t *testing.T) {
	process := EnrichBookProcessor(nil, nil)
	assert.Error(t, process(context.Background(), EnrichBookTask{BookID: 1}))
}

func TestEnrichAllBooksProcessor(t *testing.T) {
	enricher := &mockEnricher{bulk: &metadata.BulkEnrichmentResult{TotalBooks: 4, Enriched: 3, Skipped: 1}}
	auditor := &mockAuditor{}

	err := EnrichAllBooksProcessor(enricher, auditor)(context.Background(), EnrichAllBooksTask{Trigger: "schedule"})
	require.NoError(t, err)
	require.Len(t, auditor.enrichCalls, 1)
	assert.Equal(t, uint(0), auditor.enrichCalls[0].bookID)
	assert.Equal(t, "Enriched 3 of 4 books (1 skipped, 0 failed)", auditor.enrichCalls[0].description)
}

func TestEnrichAllBooksProcessor_Error(t *testing.T) {
	auditor := &mockAuditor{}
	err := EnrichAllBooksProcessor(&mockEnricher{err: errors.New("already running")}, auditor)(context.Background(), EnrichAllBooksTask{})

	require.Error(t, err)
	require.Len(t, auditor.enrichCalls, 1)
	assert.Equal(t, "Library enrichment failed", auditor.enrichCalls[0].description)
}

func TestFixCoversProcessor(t *testing.T) {
	auditor := &mockAuditor{}
	fixer := &mockCoverFixer{result: &covers.FixCoversResult{Checked: 5, Fixed: 2}}

	require.NoError(t, FixCoversProcessor(fixer, auditor)(context.Background(), FixCoversTask{}))
	assert.Equal(t, [][2]int{{5, 2}}, auditor.coverCalls)

	fixer.result, fixer.err = nil, errors.New("boom")
	assert.Error(t, FixCoversProcessor(fixer, auditor)(context.Background(), FixCoversTask{}))
	assert.Equal(t, [2]int{0, 0}, auditor.coverCalls[1])
}

func TestCleanupOrphanShelvesProcessor(t *testing.T) {
	cleaner := &mockShelfCleaner{}
	require.NoError(t, CleanupOrphanShelvesProcessor(cleaner)(context.Background(), CleanupOrphanShelvesTask{}))
	assert.Equal(t, 1, cleaner.calls)

	assert.Error(t, CleanupOrphanShelvesProcessor(nil)(context.Background(), CleanupOrphanShelvesTask{}))
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	auditor := &mockAuditor{}

	require.NoError(t, CleanupAuditEventsProcessor(auditor, 30)(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 30*24*time.Hour, auditor.retention)

	require.NoError(t, CleanupAuditEventsProcessor(auditor, 30)(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, auditor.retention)

	require.NoError(t, CleanupAuditEventsProcessor(auditor, 0)(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, time.Duration(DefaultAuditRetentionDays)*24*time.Hour, auditor.retention)
}

func TestNewTask(t *testing.T) {
	task, err := NewTask("enrich_book", 5, "0441013597")
	require.NoError(t, err)
	assert.Equal(t, EnrichBookTask{BookID: 5, ISBN: "0441013597"}, task)

	_, err = NewTask("enrich_book", 0, "")
	assert.Error(t, err)

	for _, tt := range TaskTypes {
		if tt.Type == "enrich_book" {
			continue
		}
		task, err := NewTask(tt.Type, 0, "")
		require.NoError(t, err, tt.Type)
		assert.Equal(t, tt.Type, task.Config().Name)
	}

	_, err = NewTask("reindex", 0, "")
	var unknown *UnknownTaskError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "reindex", unknown.Type)
}

func TestRegisterLibraryQueues(t *testing.T) {
	client, err := NewClient(t.TempDir()+"/lib.db", DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	client.RegisterLibraryQueues(Dependencies{Shelves: &mockShelfCleaner{}})

	for _, tt := range TaskTypes {
		task, err := NewTask(tt.Type, 1, "")
		require.NoError(t, err)
		_, err = client.Enqueue(context.Background(), task)
		assert.NoError(t, err, tt.Type)
	}
}
