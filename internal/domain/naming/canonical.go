// Package naming implements the canonicalizer and naming-factory registry
// from spec.md §4.A/§4.B: pure string transforms over hierarchical service
// names, plus a process-wide registry of pluggable name-resolution
// backends.
package naming

import (
	"strconv"
	"strings"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
)

// MakeName produces "/<appID>/<serviceDir>/<service>" with all consecutive
// slashes collapsed to one, satisfying the canonical-name invariant
// (spec.md §3 invariant 7).
func MakeName(appID int64, serviceDir, service string) string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(appID, 10))
	if serviceDir != "" && serviceDir[0] != '/' {
		b.WriteByte('/')
	}
	b.WriteString(serviceDir)
	if serviceDir == "" || serviceDir[len(serviceDir)-1] != '/' {
		b.WriteByte('/')
	}
	b.WriteString(service)

	name := b.String()
	for {
		collapsed := strings.ReplaceAll(name, "//", "/")
		if collapsed == name {
			break
		}
		name = collapsed
	}
	return name
}

// MakeTbusppUrl renames a canonical name into a dotted-authority transport
// URL: "tbuspp://<name with / replaced by . from index 1 on>/<instID>".
func MakeTbusppUrl(name string, instID int64) string {
	var b strings.Builder
	b.WriteString("tbuspp://")
	for i := 1; i < len(name); i++ {
		if name[i] == '/' {
			b.WriteByte('.')
		} else {
			b.WriteByte(name[i])
		}
	}
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(instID, 10))
	return b.String()
}

// FormatNameStr normalizes a user-supplied string and returns the
// normalized copy. It fails with an error when name is empty.
// Idempotent: FormatNameStr(FormatNameStr(x)) == FormatNameStr(x).
func FormatNameStr(name string) (string, error) {
	if name == "" {
		return "", pebbleerrors.Of(pebbleerrors.NamingInvalidParam)
	}

	if !strings.Contains(name, "/") {
		name = strings.ReplaceAll(name, ".", "/")
	}

	if name[0] != '/' {
		name = "/" + name
	}

	if len(name) > 1 && name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}

	return name, nil
}

// IsCanonical reports whether name satisfies invariant 7 of spec.md §3:
// begins with '/', contains no "//", and does not end with '/' unless it
// is the single-character root.
func IsCanonical(name string) bool {
	if name == "" || name[0] != '/' {
		return false
	}
	if strings.Contains(name, "//") {
		return false
	}
	if len(name) > 1 && name[len(name)-1] == '/' {
		return false
	}
	return true
}
