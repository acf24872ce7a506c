package reporting

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes v as indented JSON, creating the parent directory
func WriteJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
