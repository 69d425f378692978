// Package analyzer runs heuristic best-practice checks over the canonical
// model and the raw source text of each node's origin file. Findings are
// advisory strings; the analyzer never fails a run and never mutates the
// model.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nveloso/roscope/internal/model"
	"github.com/nveloso/roscope/internal/reconcile"
)

// Rate-limiting and exception-handling constructs per source language. The
// checks are lexical on purpose: they run on raw text, including files the
// extractors could only partially understand.
var (
	pythonRate = regexp.MustCompile(`rospy\.Rate\s*\(`)
	cppRate    = regexp.MustCompile(`ros::(?:Wall)?Rate\b|loop_rate`)

	pythonTry = regexp.MustCompile(`(?m)^\s*try\s*:`)
	cppTry    = regexp.MustCompile(`\btry\b[\s\S]*?\bcatch\b`)
)

// SourceReader resolves a project-relative path to file contents. Missing
// or unreadable files simply skip the raw-text rules for that node.
type SourceReader func(relPath string) ([]byte, error)

// OSReader returns a SourceReader that reads files beneath root.
func OSReader(root string) SourceReader {
	return func(relPath string) ([]byte, error) {
		return os.ReadFile(filepath.Join(root, relPath))
	}
}

// Analyze evaluates every rule and returns the findings. Each rule yields
// at most one finding per node.
func Analyze(m *model.CanonicalModel, collisions []reconcile.Collision, read SourceReader) []string {
	var warnings []string

	publishes := map[string]bool{}
	for _, t := range m.Topics {
		for _, p := range t.Publishers {
			publishes[p] = true
		}
	}

	for _, n := range m.Nodes {
		if n.OriginKind != model.OriginSource {
			continue
		}
		src, err := read(n.OriginFile)
		if err != nil {
			continue
		}

		if publishes[n.ID] && !hasRateCall(n.OriginFile, src) {
			warnings = append(warnings,
				fmt.Sprintf("[%s] No rate limiting detected → possible high-CPU publish loop", n.DisplayName))
		}
		if !hasErrorHandling(n.OriginFile, src) {
			warnings = append(warnings,
				fmt.Sprintf("[%s] No exception handling detected → fragile error handling", n.DisplayName))
		}
	}

	for _, c := range collisions {
		warnings = append(warnings,
			fmt.Sprintf("Duplicate node name %q: using %s, ignoring %s", c.Name, c.KeptFile, c.DroppedFile))
	}

	return warnings
}

func hasRateCall(relPath string, src []byte) bool {
	if isPython(relPath) {
		return pythonRate.Match(src)
	}
	return cppRate.Match(src)
}

func hasErrorHandling(relPath string, src []byte) bool {
	if isPython(relPath) {
		return pythonTry.Match(src)
	}
	return cppTry.Match(src)
}

func isPython(relPath string) bool {
	return strings.EqualFold(filepath.Ext(relPath), ".py")
}
