package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ValidPackageNameRegex covers Debian package names, snap names and
	// reverse-DNS Flatpak IDs (letters, digits, dot, dash, underscore, plus)
	// plus an optional ":arch" qualifier
	ValidPackageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*(:[a-z0-9]+)?$`)
)

// ValidatePackageName validates a package identifier before it is handed
// to a removal command or used to derive cleanup paths
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("package name too long (max 255 characters)")
	}

	if !ValidPackageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must contain only alphanumeric, dot, dash, underscore or plus characters", name)
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("package name contains suspicious pattern: ..")
	}

	return nil
}

// ValidateSearchTerm validates the user supplied search term
func ValidateSearchTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("search term cannot be empty")
	}

	if len(term) > 255 {
		return fmt.Errorf("search term too long (max 255 characters)")
	}

	if strings.ContainsAny(term, "\x00\n\r") {
		return fmt.Errorf("search term contains control characters")
	}

	if strings.HasPrefix(term, "-") {
		return fmt.Errorf("search term cannot start with '-'")
	}

	return nil
}
