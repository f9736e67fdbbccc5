package board

import (
	"errors"
	"strings"
)

// AssetsDir is the reserved directory for board assets; it is never a list.
const AssetsDir = "_assets"

// ValidateListName trims name and checks that it can be used as a list
// directory.
func ValidateListName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", errors.New("list name cannot be empty")
	case strings.ContainsAny(name, `/\`) || strings.Contains(name, ".."):
		return "", errors.New("invalid list name")
	case strings.HasPrefix(name, "."):
		return "", errors.New("list name cannot start with '.'")
	case name == AssetsDir:
		return "", errors.New("list name cannot be '" + AssetsDir + "'")
	}
	return name, nil
}

// isListDir reports whether a root-level directory entry is a list.
func isListDir(name string) bool {
	return !strings.HasPrefix(name, ".") && name != AssetsDir
}
