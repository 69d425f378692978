// Package filetree builds the presentation-ready directory tree for an
// extracted project. Only the classifier's recognized extensions and the
// folders containing them are shown; build artefacts and hidden entries
// are skipped.
package filetree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var relevantExtensions = map[string]bool{
	".py":     true,
	".cpp":    true,
	".cc":     true,
	".c":      true,
	".h":      true,
	".hpp":    true,
	".launch": true,
	".xml":    true,
	".yaml":   true,
	".yml":    true,
}

var ignoredDirs = map[string]bool{
	"build":       true,
	"devel":       true,
	"install":     true,
	"log":         true,
	"__pycache__": true,
}

// Node is one entry of the directory tree. Type is "file" or "folder";
// Size is set for files only.
type Node struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Type     string  `json:"type"`
	Size     int64   `json:"size,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Build walks root and returns its tree. Directory entries come first,
// sorted case-insensitively, matching how project browsers list files.
func Build(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	return build(root, root, info.IsDir())
}

func build(root, path string, isDir bool) (*Node, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	name := filepath.Base(path)
	if rel == "." {
		rel = ""
		if name == "." || name == string(filepath.Separator) {
			name = "root"
		}
	}

	node := &Node{
		Name: name,
		Path: filepath.ToSlash(rel),
		Type: "file",
	}

	if !isDir {
		if info, err := os.Stat(path); err == nil {
			node.Size = info.Size()
		}
		return node, nil
	}

	node.Type = "folder"
	entries, err := os.ReadDir(path)
	if err != nil {
		// Unreadable directory: show it, just without children.
		return node, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	for _, entry := range entries {
		if !include(entry.Name(), entry.IsDir()) {
			continue
		}
		child, err := build(root, filepath.Join(path, entry.Name()), entry.IsDir())
		if err != nil {
			continue
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func include(name string, isDir bool) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if isDir {
		return !ignoredDirs[strings.ToLower(name)]
	}
	return relevantExtensions[strings.ToLower(filepath.Ext(name))]
}
