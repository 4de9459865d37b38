// Command validate checks world configuration JSON files in a configs
// directory. It checks:
//   - JSON structure and the road x1/y1 orientation rule
//   - Positive dog speeds (default and per-map)
//   - Unique map ids and unique office ids within each map
//   - That maps with offices also have roads to reach them
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/dogworld/config"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateFile loads and validates a single configuration JSON file.
func validateFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}
	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	// The loader enforces the structural rules: road orientation,
	// dog speed positivity, duplicate map and office ids.
	if _, err := config.Parse(data); err != nil {
		fail("%v", err)
		return result
	}

	// Checks beyond what the loader rejects; each one fails the file.
	var file config.File
	if err := json.Unmarshal(data, &file); err != nil {
		fail("Invalid JSON: %v", err)
		return result
	}

	if len(file.Maps) == 0 {
		fail("No maps defined")
	}
	for _, m := range file.Maps {
		if m.Name == "" {
			fail("Map %s has an empty display name", m.ID)
		}
		if len(m.Roads) == 0 && len(m.Offices) > 0 {
			fail("Map %s has offices but no roads to reach them", m.ID)
		}
		for i, r := range m.Roads {
			if r.X1 != nil && r.Y1 != nil {
				fail("Map %s road %d sets both x1 and y1", m.ID, i)
			}
		}
	}

	return result
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no config files found in %s\n", dir)
		os.Exit(1)
	}

	failed := 0
	for _, path := range paths {
		result := validateFile(path)
		if result.Valid {
			fmt.Printf("OK    %s\n", result.File)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", result.File)
		for _, e := range result.Errors {
			fmt.Printf("      - %s\n", e)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d files failed validation\n", failed, len(paths))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d files passed validation\n", len(paths))
}
