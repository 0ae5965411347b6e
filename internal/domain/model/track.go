package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultTrackID is assigned to files without a leading numeric prefix.
const DefaultTrackID = "00"

// Track is one playable file of the catalog. It is derived from the filename on every
// catalog build and is never stored.
type Track struct {
	ID       string // leading digits of the filename, DefaultTrackID when absent
	Title    string // human readable title
	FileName string // filename on disk, used to build the retrieval URL
}

var (
	leadingIDRe       = regexp.MustCompile(`^(\d+)[\s._-]*`)
	separatorReplacer = strings.NewReplacer(".", " ", "_", " ", "-", " ")
)

// ParseTrack derives a Track from an audio filename.
//
//	"01.intro.mp3"        -> {ID: "01", Title: "intro"}
//	"02_my-melody.mp3"    -> {ID: "02", Title: "my melody"}
//	"untitled.mp3"        -> {ID: "00", Title: "untitled"}
func ParseTrack(fileName string) Track {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	id := DefaultTrackID
	if m := leadingIDRe.FindStringSubmatch(base); m != nil {
		id = m[1]
		base = base[len(m[0]):]
	}

	title := strings.Join(strings.Fields(separatorReplacer.Replace(base)), " ")
	if title == "" {
		title = fileName
	}
	return Track{ID: id, Title: title, FileName: fileName}
}

// NormalizeID returns the canonical form of a numeric id so that ids compare by integer
// value: "1", "01" and "001" all normalise to "1". Leading zeros are stripped instead of
// parsing, so long digit strings never overflow.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" && id != "" {
		return "0"
	}
	return trimmed
}

// SameID reports whether two numeric ids are integer-equivalent.
func SameID(a, b string) bool {
	na, nb := NormalizeID(a), NormalizeID(b)
	return na != "" && na == nb
}
