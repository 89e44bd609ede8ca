package importers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/booklibrary/internal/entities"
	"github.com/mrlokans/booklibrary/internal/services"
)

// AuditLogger records import runs.
type AuditLogger interface {
	LogImport(runID, source, description string, imported, skipped, total int, err error)
}

// SettingsStore persists the last confirmed column mapping.
type SettingsStore interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
}

// RunArchiver keeps a detailed record of each import run.
type RunArchiver interface {
	SaveRun(runID string, data any) (string, error)
}

// runRecord is what RunArchiver receives for each import.
type runRecord struct {
	RunID   string         `json:"run_id"`
	Source  string         `json:"source"`
	Mapping ColumnMapping  `json:"mapping"`
	Outcome *ImportOutcome `json:"outcome,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Service is the import entry point used by the HTTP API and the CLI.
type Service struct {
	importer *Importer
	audit    AuditLogger
	archiver RunArchiver
	settings SettingsStore
}

// NewService creates an import service writing to store.
func NewService(store services.LibraryStore) *Service {
	return &Service{importer: NewImporter(store)}
}

// SetAuditLogger enables audit logging of import runs.
func (s *Service) SetAuditLogger(audit AuditLogger) {
	s.audit = audit
}

// SetRunArchiver enables per-run detail files.
func (s *Service) SetRunArchiver(archiver RunArchiver) {
	s.archiver = archiver
}

// SetSettingsStore enables saving and loading column mappings.
func (s *Service) SetSettingsStore(settings SettingsStore) {
	s.settings = settings
}

// Importer exposes the underlying importer.
func (s *Service) Importer() *Importer {
	return s.importer
}

// PreviewHeaders returns the header row of csvText.
func (s *Service) PreviewHeaders(csvText string) ([]string, error) {
	return PreviewHeaders(csvText)
}

// AutoDetectColumns proposes a mapping for headers.
func (s *Service) AutoDetectColumns(headers []string) Detection {
	return AutoDetectColumns(headers)
}

// ImportCSV runs an import and records it in the audit log under a fresh run ID.
func (s *Service) ImportCSV(ctx context.Context, csvText string, mapping ColumnMapping, source string) (*ImportOutcome, error) {
	runID := uuid.NewString()

	outcome, err := s.importer.Import(ctx, csvText, mapping)
	if outcome != nil {
		outcome.RunID = runID
	}
	s.logImport(runID, source, outcome, err)
	s.archiveRun(runID, source, mapping, outcome, err)

	return outcome, err
}

// DryRunCSV reports what ImportCSV would do without writing anything.
func (s *Service) DryRunCSV(ctx context.Context, csvText string, mapping ColumnMapping) (*ImportOutcome, error) {
	return s.importer.DryRun(ctx, csvText, mapping)
}

// SavedMapping returns the last saved mapping, or nil when none was saved.
func (s *Service) SavedMapping() (ColumnMapping, error) {
	if s.settings == nil {
		return nil, errors.New("settings store not configured")
	}
	setting, err := s.settings.GetSetting(entities.SettingKeyImportColumnMapping)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load column mapping: %w", err)
	}
	return ParseMapping([]byte(setting.Value))
}

// SaveMapping stores mapping as the default for later imports.
func (s *Service) SaveMapping(mapping ColumnMapping) error {
	if s.settings == nil {
		return errors.New("settings store not configured")
	}
	data, err := MarshalMapping(mapping.Normalize())
	if err != nil {
		return err
	}
	if err := s.settings.SetSetting(entities.SettingKeyImportColumnMapping, string(data)); err != nil {
		return fmt.Errorf("failed to save column mapping: %w", err)
	}
	return nil
}

func (s *Service) logImport(runID, source string, outcome *ImportOutcome, err error) {
	if s.audit == nil {
		return
	}
	if source == "" {
		source = "csv"
	}

	imported, skipped, total := 0, 0, 0
	if outcome != nil {
		imported, skipped, total = outcome.Imported, len(outcome.Skipped), outcome.Total
	}
	description := fmt.Sprintf("Imported %d of %d rows (%d skipped)", imported, total, skipped)
	s.audit.LogImport(runID, source, description, imported, skipped, total, err)
}

func (s *Service) archiveRun(runID, source string, mapping ColumnMapping, outcome *ImportOutcome, err error) {
	if s.archiver == nil {
		return
	}
	record := runRecord{RunID: runID, Source: source, Mapping: mapping, Outcome: outcome}
	if err != nil {
		record.Error = err.Error()
	}
	if _, archiveErr := s.archiver.SaveRun(runID, record); archiveErr != nil {
		log.Printf("[IMPORT] Failed to archive run %s: %v", runID, archiveErr)
	}
}
