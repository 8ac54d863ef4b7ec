package impact

import (
	"fmt"
	"path"
	"strings"

	"basegraph.app/correlate/internal/model"
)

var sourceExt = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".rb": true, ".rs": true, ".kt": true, ".swift": true, ".c": true,
	".cc": true, ".cpp": true, ".h": true, ".cs": true, ".php": true, ".scala": true,
}

var configExt = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".xml": true,
	".ini": true, ".env": true, ".properties": true, ".tf": true,
}

var docExt = map[string]bool{".md": true, ".txt": true, ".rst": true, ".adoc": true}

// CategorizeFile classifies a changed path. Tests and migrations are checked
// before the extension so foo_test.go is a test, not source.
func CategorizeFile(p string) model.FileCategory {
	lower := strings.ToLower(p)
	base := path.Base(lower)
	ext := path.Ext(base)

	switch {
	case isTest(lower, base):
		return model.FileCategoryTests
	case strings.Contains(lower, "migration") || ext == ".sql":
		return model.FileCategoryMigration
	case docExt[ext]:
		return model.FileCategoryDocumentation
	case configExt[ext] || base == "dockerfile" || base == "makefile" || base == "go.mod":
		return model.FileCategoryConfig
	case sourceExt[ext]:
		return model.FileCategorySource
	}
	return model.FileCategoryOther
}

func isTest(lower, base string) bool {
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_test.py") ||
		strings.HasPrefix(base, "test_") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		(strings.HasSuffix(base, ".java") && strings.HasSuffix(strings.TrimSuffix(base, ".java"), "test")) ||
		strings.Contains(lower, "/__tests__/") ||
		strings.HasPrefix(lower, "tests/") || strings.Contains(lower, "/tests/") ||
		strings.HasPrefix(lower, "test/") || strings.Contains(lower, "/test/")
}

func CategorizeFiles(paths []string) map[string]model.FileCategory {
	out := make(map[string]model.FileCategory, len(paths))
	for _, p := range paths {
		out[p] = CategorizeFile(p)
	}
	return out
}

// RiskScore rates a change from 0 to 100:
//
//	min(files*5 + lines/100, 50) + config*5 + migrations*10 + source*2
//	+15 without tests, -10 with tests
func RiskScore(files, lines int, categories map[string]model.FileCategory) (int, []model.RiskFactor) {
	counts := map[model.FileCategory]int{}
	for _, c := range categories {
		counts[c]++
	}

	var factors []model.RiskFactor
	add := func(points int, format string, args ...any) {
		if points != 0 {
			factors = append(factors, model.RiskFactor{Factor: fmt.Sprintf(format, args...), Points: points})
		}
	}

	volume := min(files*5+lines/100, 50)
	add(volume, "%d files, %d lines changed", files, lines)
	add(counts[model.FileCategoryConfig]*5, "%d config files", counts[model.FileCategoryConfig])
	add(counts[model.FileCategoryMigration]*10, "%d migrations", counts[model.FileCategoryMigration])
	add(counts[model.FileCategorySource]*2, "%d source files", counts[model.FileCategorySource])
	if files > 0 {
		if counts[model.FileCategoryTests] > 0 {
			add(-10, "tests included")
		} else {
			add(15, "no tests")
		}
	}

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	return max(0, min(100, score)), factors
}

func ClassifyRisk(score int) model.RiskLevel {
	switch {
	case score <= 20:
		return model.RiskLevelLow
	case score <= 50:
		return model.RiskLevelMedium
	case score <= 75:
		return model.RiskLevelHigh
	}
	return model.RiskLevelCritical
}

func ClassifyBlastRadius(files, lines int) model.BlastRadius {
	switch {
	case files <= 2 && lines < 50:
		return model.BlastRadiusSmall
	case files <= 5 && lines < 200:
		return model.BlastRadiusMedium
	case files <= 10 && lines < 500:
		return model.BlastRadiusLarge
	}
	return model.BlastRadiusVeryLarge
}
