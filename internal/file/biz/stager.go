package biz

import (
	"math/rand"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const maxBaseNameLen = 120

var (
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeatedUnders = regexp.MustCompile(`_{2,}`)
	undersAtDot    = regexp.MustCompile(`_*\._*`)
)

// SanitizeFileName keeps only the last path element of a client-supplied
// filename, strips everything outside the safe charset, and collapses
// separator runs, including those left dangling against a dot. The result
// may be empty for fully hostile input; StoredName handles that case.
func SanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = repeatedUnders.ReplaceAllString(name, "_")
	name = undersAtDot.ReplaceAllString(name, ".")
	return strings.Trim(name, "._")
}

// StoredName derives a collision-free storage key from an untrusted
// filename: sanitized base capped in length, plus a timestamp-and-random
// suffix before the extension. Uniqueness holds without a store lookup.
func StoredName(originalName string) string {
	sanitized := SanitizeFileName(originalName)

	ext := filepath.Ext(sanitized)
	base := strings.TrimSuffix(sanitized, ext)
	if base == "" {
		base = "file"
	}
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}

	suffix := strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.Itoa(rand.Intn(1_000_000_000))
	return base + "-" + suffix + ext
}
