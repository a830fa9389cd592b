package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath performs general path validation
func ValidatePath(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes: %s", path)
	}

	if len(path) > 4096 {
		return fmt.Errorf("path too long: %d characters", len(path))
	}

	return nil
}

// ValidateCleanupTarget checks that path may be deleted by residual cleanup:
// absolute, already clean, not a protected directory and at least two
// levels deep
func ValidateCleanupTarget(path string, protected []string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("cleanup target must be absolute: %s", path)
	}

	clean := filepath.Clean(path)
	if clean != path {
		return fmt.Errorf("cleanup target is not a clean path: %s", path)
	}

	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("cleanup target contains ..: %s", path)
		}
	}

	if strings.Count(clean, string(filepath.Separator)) < 2 {
		return fmt.Errorf("cleanup target too close to root: %s", path)
	}

	for _, p := range protected {
		if p != "" && filepath.Clean(p) == clean {
			return fmt.Errorf("cleanup target is protected: %s", path)
		}
	}

	return nil
}

// IsPathWithinDirectory checks if targetPath is basePath or below it
func IsPathWithinDirectory(targetPath, basePath string) (bool, error) {
	if !filepath.IsAbs(targetPath) {
		return false, fmt.Errorf("target path must be absolute, got relative path: %s", targetPath)
	}
	if !filepath.IsAbs(basePath) {
		return false, fmt.Errorf("base path must be absolute, got relative path: %s", basePath)
	}

	rel, err := filepath.Rel(filepath.Clean(basePath), filepath.Clean(targetPath))
	if err != nil {
		return false, fmt.Errorf("failed to compute relative path: %w", err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	return true, nil
}
