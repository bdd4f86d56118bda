package iiif

import (
	"errors"
	"testing"
)

const manifestV2 = `{
  "@context": "http://iiif.io/api/presentation/2/context.json",
  "@id": "https://iiif.example.org/df_dk_0007450/manifest.json",
  "@type": "sc:Manifest",
  "related": {"@id": "https://www.example.org/werk/df_dk_0007450", "format": "text/html"},
  "metadata": [
    {"label": "Link zum Werk", "value": "https://www.example.org/other"}
  ],
  "sequences": [{
    "canvases": [
      {
        "@id": "https://iiif.example.org/canvas/1",
        "width": 4000,
        "height": "3000",
        "images": [{
          "resource": {
            "@id": "https://iiif.example.org/iiif/2/df_dk_0007450_1/full/full/0/default.jpg",
            "service": {"@id": "https://iiif.example.org/iiif/2/df_dk_0007450_1/", "profile": "http://iiif.io/api/image/2/level1.json"}
          }
        }]
      },
      {
        "@id": "https://iiif.example.org/canvas/2",
        "width": 0,
        "height": 0,
        "images": [{
          "resource": {"@id": "https://iiif.example.org/iiif/2/df_dk_0007450_2/full/full/0/default.jpg"}
        }]
      },
      {
        "@id": "https://iiif.example.org/canvas/3",
        "images": []
      }
    ]
  }]
}`

const manifestV3 = `{
  "@context": "http://iiif.io/api/presentation/3/context.json",
  "id": "https://iiif.example.org/obj/manifest",
  "type": "Manifest",
  "homepage": [{"id": "https://www.example.org/obj", "type": "Text"}],
  "metadata": [
    {"label": {"de": ["Link zum Werk"]}, "value": {"none": ["https://www.example.org/werk"]}}
  ],
  "items": [{
    "id": "https://iiif.example.org/obj/canvas/1",
    "type": "Canvas",
    "width": 1200.0,
    "height": 800,
    "items": [{
      "type": "AnnotationPage",
      "items": [{
        "type": "Annotation",
        "body": {
          "id": "https://images.example.org/obj-1/full/max/0/default.jpg",
          "type": "Image",
          "service": [{"id": "https://images.example.org/obj-1", "type": "ImageService3"}]
        }
      }]
    }]
  }]
}`

func TestParseManifestV2(t *testing.T) {
	m, err := ParseManifest([]byte(manifestV2))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if v := m.Version(); v != 2 {
		t.Errorf("version: got %v want 2", v)
	}

	var tests = []struct {
		page   int
		canvas Canvas
		ok     bool
	}{
		{1, Canvas{0, 4000, 3000, "https://iiif.example.org/iiif/2/df_dk_0007450_1"}, true},
		{0, Canvas{0, 4000, 3000, "https://iiif.example.org/iiif/2/df_dk_0007450_1"}, true},
		{-3, Canvas{0, 4000, 3000, "https://iiif.example.org/iiif/2/df_dk_0007450_1"}, true},
		{2, Canvas{1, 0, 0, "https://iiif.example.org/iiif/2/df_dk_0007450_2"}, true},
		{3, Canvas{2, 0, 0, ""}, true},
		{4, Canvas{}, false},
	}

	for _, test := range tests {
		canvas, ok := CanvasForPage(m, test.page)
		if canvas != test.canvas || ok != test.ok {
			t.Errorf("page %d: got %+v, %v want %+v, %v", test.page, canvas, ok, test.canvas, test.ok)
		}
	}

	if related := m.Related(); related != "https://www.example.org/werk/df_dk_0007450" {
		t.Errorf("related: got %#v", related)
	}
}

func TestParseManifestV3(t *testing.T) {
	m, err := ParseManifest([]byte(manifestV3))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if v := m.Version(); v != 3 {
		t.Errorf("version: got %v want 3", v)
	}

	canvases := m.Canvases()
	if len(canvases) != 1 {
		t.Fatalf("canvases: got %d want 1", len(canvases))
	}
	want := Canvas{0, 1200, 800, "https://images.example.org/obj-1"}
	if canvases[0] != want {
		t.Errorf("canvas: got %+v want %+v", canvases[0], want)
	}

	if homepage := m.Homepage(); homepage != "https://www.example.org/obj" {
		t.Errorf("homepage: got %#v", homepage)
	}

	metadata := m.Metadata()
	if len(metadata) != 1 || metadata[0] != (MetadataPair{"Link zum Werk", "https://www.example.org/werk"}) {
		t.Errorf("metadata: got %+v", metadata)
	}
}

func TestParseManifestVariant(t *testing.T) {
	var tests = []struct {
		name    string
		doc     string
		version int
		pages   int
	}{
		{"items wins over sequences", `{"items": [{"width": 1, "height": 1}], "sequences": [{"canvases": [{}, {}]}]}`, 3, 1},
		{"empty items falls back to sequences", `{"items": [], "sequences": [{"canvases": [{}, {}]}]}`, 2, 2},
		{"empty items only", `{"items": []}`, 3, 0},
		{"empty sequences only", `{"sequences": []}`, 2, 0},
		{"context v3", `{"@context": ["http://www.w3.org/ns/anno.jsonld", "http://iiif.io/api/presentation/3/context.json"]}`, 3, 0},
		{"context v2", `{"@context": "http://iiif.io/api/presentation/2/context.json"}`, 2, 0},
		{"metadata as an object", `{"metadata": {"a": 1}, "items": [{}]}`, 3, 1},
		{"items as an object", `{"items": {"a": 1}, "sequences": [{"canvases": [{}]}]}`, 2, 1},
		{"canvas not an object", `{"items": ["stray", {"width": 1, "height": 1}]}`, 3, 2},
	}

	for _, test := range tests {
		m, err := ParseManifest([]byte(test.doc))
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if m.Version() != test.version {
			t.Errorf("%s: version got %d want %d", test.name, m.Version(), test.version)
		}
		if pages := len(m.Canvases()); pages != test.pages {
			t.Errorf("%s: pages got %d want %d", test.name, pages, test.pages)
		}
	}
}

func TestParseManifestMalformed(t *testing.T) {
	var tests = []string{
		``,
		`   `,
		`null`,
		`[]`,
		`"manifest"`,
		`<html></html>`,
		`{"label": "nothing else"}`,
		`{"items": [`,
		`{"items": {"a": 1}}`,
	}

	for _, doc := range tests {
		if _, err := ParseManifest([]byte(doc)); !errors.Is(err, ErrMalformedManifest) {
			t.Errorf("%#v: got %v want ErrMalformedManifest", doc, err)
		}
	}
}

func TestServiceLookup(t *testing.T) {
	var tests = []struct {
		name    string
		doc     string
		service string
	}{
		{
			"v3 body list",
			`{"items": [{"items": [{"items": [{"body": [{"id": "x", "service": {"@id": "https://a.example/svc/"}}]}]}]}]}`,
			"https://a.example/svc",
		},
		{
			"v3 service as string",
			`{"items": [{"items": [{"items": [{"body": {"service": ["https://a.example/svc"]}}]}]}]}`,
			"https://a.example/svc",
		},
		{
			"v2 service list",
			`{"sequences": [{"canvases": [{"images": [{"resource": {"service": [{"@id": "https://b.example/svc"}]}}]}]}]}`,
			"https://b.example/svc",
		},
		{
			"v2 image url fallback",
			`{"sequences": [{"canvases": [{"images": [{"resource": {"@id": "https://b.example/iiif/2/abc/full/full/0/default.jpg"}}]}]}]}`,
			"https://b.example/iiif/2/abc",
		},
		{
			"v2 foreign image url",
			`{"sequences": [{"canvases": [{"images": [{"resource": {"@id": "https://b.example/images/abc.jpg"}}]}]}]}`,
			"",
		},
		{
			"v3 no annotation",
			`{"items": [{"items": []}]}`,
			"",
		},
	}

	for _, test := range tests {
		m, err := ParseManifest([]byte(test.doc))
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		canvas, _ := CanvasForPage(m, 1)
		if canvas.ServiceID != test.service {
			t.Errorf("%s: got %#v want %#v", test.name, canvas.ServiceID, test.service)
		}
	}
}

func TestLandingPage(t *testing.T) {
	labels := []string{"link zum werk"}

	var tests = []struct {
		name    string
		doc     string
		labels  []string
		landing string
	}{
		{"v3 homepage", manifestV3, labels, "https://www.example.org/obj"},
		{"v2 related", manifestV2, labels, "https://www.example.org/werk/df_dk_0007450"},
		{
			"metadata label",
			`{"items": [], "metadata": [{"label": "Other", "value": "https://nope.example"}, {"label": "LINK ZUM WERK", "value": "https://yes.example/werk"}]}`,
			labels,
			"https://yes.example/werk",
		},
		{
			"v2 language list",
			`{"sequences": [], "metadata": [{"label": [{"@value": "Link zum Werk", "@language": "de"}], "value": {"@value": "https://yes.example/werk"}}]}`,
			labels,
			"https://yes.example/werk",
		},
		{
			"metadata without labels",
			`{"items": [], "metadata": [{"label": "Link zum Werk", "value": "https://yes.example/werk"}]}`,
			nil,
			"",
		},
		{
			"metadata value not a url",
			`{"items": [], "metadata": [{"label": "Link zum Werk", "value": "<a href=\"https://x.example\">Werk</a>"}]}`,
			labels,
			"",
		},
		{
			"homepage not a url",
			`{"items": [], "homepage": [{"id": "urn:example:1"}]}`,
			labels,
			"",
		},
	}

	for _, test := range tests {
		m, err := ParseManifest([]byte(test.doc))
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if landing := LandingPage(m, test.labels); landing != test.landing {
			t.Errorf("%s: got %#v want %#v", test.name, landing, test.landing)
		}
	}
}

func TestDecodeManifestRaw(t *testing.T) {
	m, raw, err := decodeManifest([]byte(manifestV3))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if m.Version() != 3 {
		t.Errorf("version: got %v want 3", m.Version())
	}
	if raw["id"] != "https://iiif.example.org/obj/manifest" {
		t.Errorf("raw id: got %#v", raw["id"])
	}

	if _, raw, err := decodeManifest([]byte(`{"label": "nothing else"}`)); !errors.Is(err, ErrMalformedManifest) || raw != nil {
		t.Errorf("got %v, %v want ErrMalformedManifest and no document", raw, err)
	}
}
