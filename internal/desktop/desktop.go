package desktop

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/pkgpurge/internal/fsops"
	"github.com/spf13/afero"
)

// Entry holds the [Desktop Entry] keys pkgpurge reports on
type Entry struct {
	Type string
	Name string
	Exec string
	Icon string
}

// Parse parses a .desktop file from a reader
func Parse(r io.Reader) (*Entry, error) {
	de := &Entry{}
	scanner := bufio.NewScanner(r)
	inDesktopEntry := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}

		if !inDesktopEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "Type":
			de.Type = strings.TrimSpace(value)
		case "Name":
			de.Name = strings.TrimSpace(value)
		case "Exec":
			de.Exec = strings.TrimSpace(value)
		case "Icon":
			de.Icon = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan desktop file: %w", err)
	}

	return de, nil
}

// ParseFile parses the desktop file at path
func ParseFile(fs afero.Fs, path string) (*Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open desktop file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// FindEntries returns the *.desktop files in dirs whose file name matches
// any of names on a word boundary. Unreadable or missing directories are
// skipped.
func FindEntries(fs afero.Fs, dirs []string, names []string) []string {
	seen := make(map[string]bool)
	var matches []string

	for _, dir := range dirs {
		files, err := fsops.ListFiles(fs, dir, ".desktop")
		if err != nil {
			continue
		}

		for _, file := range files {
			if seen[file] || !matchesAny(filepath.Base(file), names) {
				continue
			}
			seen[file] = true
			matches = append(matches, file)
		}
	}

	return matches
}

// matchesAny reports whether the entry stem is one of names, ends in
// ".<name>" (reverse-DNS ids) or starts with "<name>-" or "<name>_".
// Letter case is ignored.
func matchesAny(fileName string, names []string) bool {
	stem := strings.ToLower(strings.TrimSuffix(fileName, ".desktop"))
	for _, name := range names {
		if name == "" {
			continue
		}
		name = strings.ToLower(name)
		switch {
		case stem == name,
			strings.HasSuffix(stem, "."+name),
			strings.HasPrefix(stem, name+"-"),
			strings.HasPrefix(stem, name+"_"):
			return true
		}
	}
	return false
}
