package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// expandScenarioArgs turns command arguments into a sorted, de-duplicated
// list of scenario files. Each argument is a file, a directory (searched
// recursively), or a doublestar glob such as "scenarios/**/*.yaml".
func expandScenarioArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, arg := range args {
		pattern := arg
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			pattern = filepath.Join(arg, "**", "*.{yaml,yml}")
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no scenario files match %q", arg)
		}

		for _, m := range matches {
			if !isScenarioFile(m) || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files found")
	}
	sort.Strings(files)
	return files, nil
}

func isScenarioFile(path string) bool {
	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// goldenFilePath returns where the golden trace for a scenario file lives:
// a golden/ directory next to the scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(dir, "golden", name+".golden")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
