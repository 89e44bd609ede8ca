package importers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/entities"
)

type auditCall struct {
	runID    string
	source   string
	imported int
	skipped  int
	total    int
	err      error
}

type mockAuditLogger struct {
	calls []auditCall
}

func (m *mockAuditLogger) LogImport(runID, source, description string, imported, skipped, total int, err error) {
	m.calls = append(m.calls, auditCall{runID, source, imported, skipped, total, err})
}

type mockSettingsStore struct {
	values map[string]string
}

func (m *mockSettingsStore) GetSetting(key string) (*entities.Setting, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &entities.Setting{Key: key, Value: v}, nil
}

func (m *mockSettingsStore) SetSetting(key, value string) error {
	m.values[key] = value
	return nil
}

func TestService_ImportCSV_RecordsAudit(t *testing.T) {
	store := newMockStore(entities.Book{Title: "Dune", Author: "Frank Herbert"})
	audit := &mockAuditLogger{}
	svc := NewService(store)
	svc.SetAuditLogger(audit)

	outcome, err := svc.ImportCSV(context.Background(), "Title,Author\nDune,Frank Herbert\nEmma,Jane Austen\n", basicMapping, "goodreads")

	require.NoError(t, err)
	_, parseErr := uuid.Parse(outcome.RunID)
	assert.NoError(t, parseErr)

	require.Len(t, audit.calls, 1)
	call := audit.calls[0]
	assert.Equal(t, outcome.RunID, call.runID)
	assert.Equal(t, "goodreads", call.source)
	assert.Equal(t, 1, call.imported)
	assert.Equal(t, 1, call.skipped)
	assert.Equal(t, 2, call.total)
	assert.NoError(t, call.err)
}

func TestService_ImportCSV_AuditsFailures(t *testing.T) {
	audit := &mockAuditLogger{}
	svc := NewService(newMockStore())
	svc.SetAuditLogger(audit)

	outcome, err := svc.ImportCSV(context.Background(), "Title\nDune\n", ColumnMapping{FieldTitle: "Title"}, "")

	assert.Error(t, err)
	assert.Nil(t, outcome)
	require.Len(t, audit.calls, 1)
	assert.Equal(t, "csv", audit.calls[0].source)
	assert.Error(t, audit.calls[0].err)
}

func TestService_PreviewAndDetect(t *testing.T) {
	svc := NewService(newMockStore())

	headers, err := svc.PreviewHeaders("Title,Author,My Rating,ISBN13\n")
	require.NoError(t, err)

	detection := svc.AutoDetectColumns(headers)
	assert.Equal(t, 4, detection.Matched)
}

func TestService_SaveAndLoadMapping(t *testing.T) {
	svc := NewService(newMockStore())
	svc.SetSettingsStore(&mockSettingsStore{values: map[string]string{}})

	saved, err := svc.SavedMapping()
	require.NoError(t, err)
	assert.Nil(t, saved)

	mapping := ColumnMapping{FieldTitle: "Title", FieldAuthor: "Primary Author"}
	require.NoError(t, svc.SaveMapping(mapping))

	loaded, err := svc.SavedMapping()
	require.NoError(t, err)
	assert.Equal(t, mapping, loaded)
}

func TestService_MappingWithoutSettingsStore(t *testing.T) {
	svc := NewService(newMockStore())

	_, err := svc.SavedMapping()
	assert.Error(t, err)
	assert.Error(t, svc.SaveMapping(ColumnMapping{}))
}

type mockArchiver struct {
	runs map[string]any
}

func (m *mockArchiver) SaveRun(runID string, data any) (string, error) {
	if m.runs == nil {
		m.runs = make(map[string]any)
	}
	m.runs[runID] = data
	return runID + ".json", nil
}

func TestService_ImportCSV_ArchivesRun(t *testing.T) {
	archiver := &mockArchiver{}
	svc := NewService(newMockStore())
	svc.SetRunArchiver(archiver)

	outcome, err := svc.ImportCSV(context.Background(), "Title,Author\nEmma,Jane Austen\n", basicMapping, "upload")
	require.NoError(t, err)

	require.Contains(t, archiver.runs, outcome.RunID)
	record, ok := archiver.runs[outcome.RunID].(runRecord)
	require.True(t, ok)
	assert.Equal(t, "upload", record.Source)
	assert.Equal(t, 1, record.Outcome.Imported)
	assert.Empty(t, record.Error)
}
