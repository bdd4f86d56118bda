package iiif

import (
	"golang.org/x/text/cases"
)

// DefaultLandingLabels maps a provider id to the metadata labels that carry
// its landing page.
var DefaultLandingLabels = map[string][]string{
	"deutsche-fotothek": {"Link zum Werk"},
}

// LandingPage returns the human-facing page of a manifest: the v3 homepage,
// then the v2 related link, then the first metadata value whose label is one
// of labels (case-insensitive) and which is an absolute HTTP(S) URL.
func LandingPage(m Manifest, labels []string) string {
	if m == nil {
		return ""
	}
	if homepage := m.Homepage(); homepage != "" {
		return homepage
	}
	if related := m.Related(); related != "" {
		return related
	}
	if len(labels) == 0 {
		return ""
	}

	fold := cases.Fold()
	wanted := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		wanted[fold.String(l)] = struct{}{}
	}

	for _, pair := range m.Metadata() {
		if _, ok := wanted[fold.String(pair.Label)]; ok && isHTTPURL(pair.Value) {
			return pair.Value
		}
	}
	return ""
}
