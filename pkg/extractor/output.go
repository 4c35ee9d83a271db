package extractor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xhad/reelindex/internal/models"
)

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func ReadImageTitles(path string) (models.ImageTitleMap, error) {
	var m models.ImageTitleMap
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func ReadPageTexts(path string) (models.PageTextMap, error) {
	var m models.PageTextMap
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
