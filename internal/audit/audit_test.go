package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor_SaveRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	auditor := NewAuditor(dir)

	t.Run("creates directory and names file after run", func(t *testing.T) {
		data := map[string]any{
			"source":   "goodreads.csv",
			"imported": 2,
			"skipped":  []string{"Dune"},
		}

		filename, err := auditor.SaveRun("run-1", data)
		require.NoError(t, err)
		assert.Equal(t, "run-1.json", filename)

		content, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)

		var saved map[string]any
		require.NoError(t, json.Unmarshal(content, &saved))
		assert.Equal(t, "goodreads.csv", saved["source"])
		assert.Equal(t, float64(2), saved["imported"])
		assert.Equal(t, []any{"Dune"}, saved["skipped"])
	})

	t.Run("generates unique names without run ID", func(t *testing.T) {
		name1, err := auditor.SaveRun("", map[string]string{"k": "v"})
		require.NoError(t, err)
		name2, err := auditor.SaveRun("", map[string]string{"k": "v"})
		require.NoError(t, err)

		assert.NotEqual(t, name1, name2)
		assert.Contains(t, name1, ".json")
	})

	t.Run("rejects unencodable data", func(t *testing.T) {
		_, err := auditor.SaveRun("bad", map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}
