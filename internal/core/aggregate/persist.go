package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agenthands/persona/internal/core/model"
)

// Save writes rec as indented JSON. The file is replaced atomically, so a
// reader sees either the previous persona or the new one.
func Save(path string, rec model.PersonaRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode persona: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create persona dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".persona-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write persona: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync persona: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move persona into place: %w", err)
	}
	return nil
}

// Load reads a persona written by Save.
func Load(path string) (model.PersonaRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PersonaRecord{}, fmt.Errorf("failed to read persona '%s': %w", path, err)
	}
	var rec model.PersonaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.PersonaRecord{}, &model.MalformedInputError{Field: "persona", Source: path, Err: err}
	}
	if rec.UserID == "" {
		return model.PersonaRecord{}, &model.MalformedInputError{Field: "user_id", Source: path}
	}
	return rec, nil
}

// PersonaPath is where a user's persona lives under dir.
func PersonaPath(dir, userID string) string {
	return userPath(dir, userID, "_persona.json")
}

// ReportPath is where a user's text report lives under dir.
func ReportPath(dir, userID string) string {
	return userPath(dir, userID, "_report.txt")
}

// userPath keeps the file inside dir whatever the user ID contains.
func userPath(dir, userID, suffix string) string {
	return filepath.Join(dir, filepath.Base(userID)+suffix)
}
