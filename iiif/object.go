package iiif

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// imageExtension is the file extension the display layer appends to titles.
var imageExtension = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|bmp|webp)$`)

// Provider maps object ids to the manifest URL of one IIIF provider.
type Provider struct {
	ID string
	// IDPattern restricts the provider to matching object ids, when set.
	IDPattern *regexp.Regexp
	// ManifestPattern is the manifest URL with `$1` standing for the id.
	ManifestPattern string
}

// ManifestURL returns the manifest location of id, or "" when the provider
// does not serve it.
func (p Provider) ManifestURL(id string) string {
	if p.IDPattern != nil && !p.IDPattern.MatchString(id) {
		return ""
	}
	return strings.ReplaceAll(p.ManifestPattern, "$1", id)
}

// Object is a resolved manifest together with where it came from.
type Object struct {
	Provider    string
	ObjectID    string
	ManifestURL string
	Raw         map[string]interface{}
	Manifest    Manifest
}

// ObjectID turns a wiki title into an object id: spaces become underscores,
// the first letter is lower-cased and one trailing image extension is
// dropped.
//
//	"Df_Dk_0007450.jpg" → "df_Dk_0007450"
func ObjectID(title string) string {
	id := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	if r, size := utf8.DecodeRuneInString(id); r != utf8.RuneError {
		id = string(unicode.ToLower(r)) + id[size:]
	}
	if loc := imageExtension.FindStringIndex(id); loc != nil {
		id = id[:loc[0]]
	}
	return id
}
