package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Auditor archives the details of import runs as JSON files, one per run,
// named after the run ID.
type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveRun writes data to <runID>.json and returns the file name. A fresh
// UUID is used when runID is empty.
func (a *Auditor) SaveRun(runID string, data any) (string, error) {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	if runID == "" {
		runID = uuid.NewString()
	}
	filename := runID + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("[AUDIT] Saved run details to %s", path)
	return filename, nil
}
