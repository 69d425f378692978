// Package classifier walks an extracted project directory and buckets each
// file into one of four categories: Python source, C++ source, launch
// descriptor, or other. Extractors only ever see the first three; "other"
// exists so the file tree can still show what was skipped.
package classifier

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// catkinMarker identifies generated Python wrapper scripts that would
// otherwise be double-counted as node sources.
const catkinMarker = "generated from catkin/cmake/template"

// defaultIgnoredDirs are build artefact directories never worth scanning.
var defaultIgnoredDirs = map[string]bool{
	"build":       true,
	"devel":       true,
	"install":     true,
	"log":         true,
	"__pycache__": true,
}

var cppExtensions = map[string]bool{
	".cpp": true,
	".cc":  true,
	".c":   true,
	".h":   true,
	".hpp": true,
}

// Options adjusts the walk. Zero value works for typical projects.
type Options struct {
	// IgnoredPaths are additional path substrings (matched
	// case-insensitively against the slash-separated relative path)
	// whose files are excluded from every category.
	IgnoredPaths []string
}

// Listing holds the classified file paths, relative to the project root,
// each category sorted by path for determinism.
type Listing struct {
	Python []string
	Cpp    []string
	Launch []string
	Other  []string
}

// Classify walks the project root and classifies every regular file. An
// empty or missing category yields an empty slice, not an error; only a
// completely unreadable root fails.
func Classify(root string, opts Options) (*Listing, error) {
	listing := &Listing{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtrees are skipped, not fatal.
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || defaultIgnoredDirs[strings.ToLower(name)] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if ignored(rel, opts.IgnoredPaths) {
			return nil
		}

		switch category(path, rel) {
		case categoryPython:
			listing.Python = append(listing.Python, rel)
		case categoryCpp:
			listing.Cpp = append(listing.Cpp, rel)
		case categoryLaunch:
			listing.Launch = append(listing.Launch, rel)
		default:
			listing.Other = append(listing.Other, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(listing.Python)
	sort.Strings(listing.Cpp)
	sort.Strings(listing.Launch)
	sort.Strings(listing.Other)
	return listing, nil
}

type fileCategory int

const (
	categoryOther fileCategory = iota
	categoryPython
	categoryCpp
	categoryLaunch
)

func category(path, rel string) fileCategory {
	ext := strings.ToLower(filepath.Ext(rel))
	switch {
	case ext == ".py":
		if isGeneratedPython(path) {
			return categoryOther
		}
		return categoryPython
	case cppExtensions[ext]:
		return categoryCpp
	case ext == ".launch":
		return categoryLaunch
	case ext == ".xml":
		// A plain .xml file is only a launch descriptor when its name or
		// root element says so.
		if strings.Contains(strings.ToLower(filepath.Base(rel)), "launch") || hasLaunchRoot(path) {
			return categoryLaunch
		}
	}
	return categoryOther
}

func ignored(rel string, extra []string) bool {
	lower := strings.ToLower(rel)
	for _, p := range extra {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func isGeneratedPython(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte(catkinMarker))
}

// hasLaunchRoot sniffs the beginning of an XML file for a <launch> root
// element.
func hasLaunchRoot(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return bytes.Contains(buf[:n], []byte("<launch"))
}
