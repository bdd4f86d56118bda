package iiif

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedManifest is returned when a document is not a usable
// Presentation API manifest.
var ErrMalformedManifest = errors.New("malformed IIIF manifest")

// imageAPI2Prefix recovers a service base from an Image API 2 image URL.
var imageAPI2Prefix = regexp.MustCompile(`^(.*?/iiif/2/[^/]+)`)

// Canvas is one page of a manifest.
type Canvas struct {
	Index     int
	Width     int
	Height    int
	ServiceID string
}

// MetadataPair is a manifest `metadata` entry reduced to plain strings.
type MetadataPair struct {
	Label string
	Value string
}

// Manifest is the version-agnostic view of a Presentation API document.
type Manifest interface {
	// Version is the Presentation API major version, 2 or 3.
	Version() int
	Canvases() []Canvas
	// Homepage is the v3 `homepage` link, if it looks like a URL.
	Homepage() string
	// Related is the v2 `related` link, if it looks like a URL.
	Related() string
	Metadata() []MetadataPair
}

// CanvasForPage returns the canvas for a 1-based page number.
func CanvasForPage(m Manifest, page int) (Canvas, bool) {
	canvases := m.Canvases()
	idx := NormalizePage(page) - 1
	if idx >= len(canvases) {
		return Canvas{}, false
	}
	return canvases[idx], true
}

// NormalizePage maps anything below 1 to the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ManifestV2 is a Presentation API 2 manifest.
type ManifestV2 struct {
	canvases []Canvas
	related  string
	metadata []MetadataPair
}

func (m *ManifestV2) Version() int             { return 2 }
func (m *ManifestV2) Canvases() []Canvas       { return m.canvases }
func (m *ManifestV2) Homepage() string         { return "" }
func (m *ManifestV2) Related() string          { return m.related }
func (m *ManifestV2) Metadata() []MetadataPair { return m.metadata }

// ManifestV3 is a Presentation API 3 manifest.
type ManifestV3 struct {
	canvases []Canvas
	homepage string
	metadata []MetadataPair
}

func (m *ManifestV3) Version() int             { return 3 }
func (m *ManifestV3) Canvases() []Canvas       { return m.canvases }
func (m *ManifestV3) Homepage() string         { return m.homepage }
func (m *ManifestV3) Related() string          { return "" }
func (m *ManifestV3) Metadata() []MetadataPair { return m.metadata }

// Lists are read leniently: a list given as anything else counts as absent,
// and entries that are not objects are ignored.
type rawManifest struct {
	Context   oneOrMany `json:"@context"`
	Items     looseList `json:"items"`
	Sequences looseList `json:"sequences"`
	Homepage  oneOrMany `json:"homepage"`
	Related   oneOrMany `json:"related"`
	Metadata  looseList `json:"metadata"`
}

type rawSequence struct {
	Canvases looseList `json:"canvases"`
}

type rawCanvas struct {
	Width  dimension `json:"width"`
	Height dimension `json:"height"`
	Items  looseList `json:"items"`
	Images looseList `json:"images"`
}

type rawAnnotationPage struct {
	Items looseList `json:"items"`
}

type rawAnnotation struct {
	Body     oneOrMany `json:"body"`
	Resource oneOrMany `json:"resource"`
}

type rawMetadata struct {
	Label json.RawMessage `json:"label"`
	Value json.RawMessage `json:"value"`
}

// ParseManifest reads a Presentation API 2 or 3 document. The variant is
// chosen once: a non-empty `items` list means v3, otherwise `sequences` means
// v2, and a bare `@context` settles documents that carry neither.
func ParseManifest(data []byte) (Manifest, error) {
	m, _, err := decodeManifest(data)
	return m, err
}

// decodeManifest parses a manifest together with its generic JSON form.
func decodeManifest(data []byte) (Manifest, map[string]interface{}, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil, ErrMalformedManifest
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	var doc rawManifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	switch {
	case len(doc.Items) > 0:
		return newManifestV3(&doc), raw, nil
	case len(doc.Sequences) > 0:
		return newManifestV2(&doc), raw, nil
	case doc.Items != nil || doc.presentation(3):
		return newManifestV3(&doc), raw, nil
	case doc.Sequences != nil || doc.presentation(2):
		return newManifestV2(&doc), raw, nil
	}
	return nil, nil, ErrMalformedManifest
}

func (doc *rawManifest) presentation(version int) bool {
	needle := fmt.Sprintf("iiif.io/api/presentation/%d/", version)
	for _, c := range doc.Context {
		var s string
		if json.Unmarshal(c, &s) == nil && strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func newManifestV3(doc *rawManifest) *ManifestV3 {
	return &ManifestV3{
		canvases: canvasesOf(doc.Items),
		homepage: linkOf(doc.Homepage),
		metadata: metadataOf(doc.Metadata),
	}
}

func newManifestV2(doc *rawManifest) *ManifestV2 {
	var sequence rawSequence
	if len(doc.Sequences) > 0 {
		decodeObject(doc.Sequences[0], &sequence)
	}
	return &ManifestV2{
		canvases: canvasesOf(sequence.Canvases),
		related:  linkOf(doc.Related),
		metadata: metadataOf(doc.Metadata),
	}
}

// canvasesOf keeps one canvas per entry, so that page numbers match the
// document. Entries that are not objects become empty canvases.
func canvasesOf(raw looseList) []Canvas {
	canvases := make([]Canvas, len(raw))
	for i, entry := range raw {
		var c rawCanvas
		decodeObject(entry, &c)
		canvases[i] = Canvas{
			Index:     i,
			Width:     int(c.Width),
			Height:    int(c.Height),
			ServiceID: c.serviceID(),
		}
	}
	return canvases
}

// serviceID follows canvas → annotation page → annotation → body → service
// first, then the v2 canvas → image → resource → service chain.
func (c *rawCanvas) serviceID() string {
	if id := c.serviceIDv3(); id != "" {
		return id
	}
	return c.serviceIDv2()
}

func (c *rawCanvas) serviceIDv3() string {
	var page rawAnnotationPage
	if len(c.Items) == 0 || !decodeObject(c.Items[0], &page) || len(page.Items) == 0 {
		return ""
	}
	var annotation rawAnnotation
	if !decodeObject(page.Items[0], &annotation) {
		return ""
	}
	body, ok := decodeReference(annotation.Body.first())
	if !ok {
		return ""
	}
	return serviceOf(body)
}

func (c *rawCanvas) serviceIDv2() string {
	var image rawAnnotation
	if len(c.Images) == 0 || !decodeObject(c.Images[0], &image) {
		return ""
	}
	resource, ok := decodeReference(image.Resource.first())
	if !ok {
		return ""
	}
	if id := serviceOf(resource); id != "" {
		return id
	}
	if match := imageAPI2Prefix.FindStringSubmatch(resource.id()); match != nil {
		return match[1]
	}
	return ""
}

func serviceOf(resource reference) string {
	service, ok := decodeReference(resource.Service.first())
	if !ok {
		return ""
	}
	return strings.TrimRight(service.id(), "/")
}

// linkOf resolves a homepage/related value to its first absolute HTTP(S) id.
func linkOf(values oneOrMany) string {
	ref, ok := decodeReference(values.first())
	if !ok {
		return ""
	}
	if id := ref.id(); isHTTPURL(id) {
		return id
	}
	return ""
}

func metadataOf(raw looseList) []MetadataPair {
	pairs := make([]MetadataPair, 0, len(raw))
	for _, entry := range raw {
		var m rawMetadata
		if !decodeObject(entry, &m) {
			continue
		}
		pairs = append(pairs, MetadataPair{
			Label: firstString(m.Label),
			Value: firstString(m.Value),
		})
	}
	return pairs
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
