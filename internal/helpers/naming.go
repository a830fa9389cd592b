package helpers

import (
	"strings"
	"unicode"
)

var archSuffixTokens = map[string]struct{}{
	"x86": {}, "x64": {}, "x86_64": {}, "x86-64": {}, "amd64": {},
	"arm": {}, "arm64": {}, "aarch64": {}, "armhf": {}, "armv7": {},
	"armv7l": {}, "armv6": {}, "armel": {}, "riscv64": {}, "ppc64el": {},
	"ppc64le": {}, "s390x": {}, "i386": {}, "i686": {}, "all": {},
}

// BaseName strips architecture and version qualifiers from a package name.
//
//	"libreoffice-calc:amd64"  -> "libreoffice-calc"
//	"firefox_128.0_amd64"     -> "firefox"
//	"openjdk-17-jre"          -> "openjdk-17-jre"
//	"python3-pip-23.0"        -> "python3-pip"
func BaseName(pkgName string) string {
	name := strings.TrimSpace(pkgName)
	if i := strings.IndexAny(name, ":_="); i > 0 {
		name = name[:i]
	}

	tokens := strings.Split(name, "-")
	for len(tokens) > 1 {
		last := strings.ToLower(tokens[len(tokens)-1])
		if !isVersionToken(last) && !isArchToken(last) {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, "-")
}

// NameVariants returns the base name followed by the full name, without
// duplicates or empty values. Residual-file matching uses both.
func NameVariants(pkgName string) []string {
	full := strings.TrimSpace(pkgName)
	base := BaseName(full)

	var variants []string
	for _, v := range []string{base, full} {
		if v == "" {
			continue
		}
		if len(variants) > 0 && variants[0] == v {
			continue
		}
		variants = append(variants, v)
	}
	return variants
}

func isVersionToken(token string) bool {
	if token == "" {
		return false
	}
	if token[0] == 'v' && len(token) > 1 && looksNumeric(token[1:]) {
		return true
	}
	// bare integers such as the 3 in libgtk-3 belong to the name
	return looksNumeric(token) && strings.Contains(token, ".")
}

func looksNumeric(token string) bool {
	hasDigit := false
	for _, r := range token {
		if unicode.IsDigit(r) {
			hasDigit = true
			continue
		}
		if r == '.' || r == '+' || r == '~' {
			continue
		}
		return false
	}
	return hasDigit
}

func isArchToken(token string) bool {
	_, ok := archSuffixTokens[token]
	return ok
}
