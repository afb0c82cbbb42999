package health

import "fmt"

// URLType names the pipeline stage an EditionResult was recorded at.
type URLType int

const (
	// URLTypeProduct marks a failed product metadata fetch.
	URLTypeProduct URLType = iota + 1
	// URLTypeProductEditions marks a failed edition list fetch.
	URLTypeProductEditions
	// URLTypeProductEdition marks a failed edition metadata fetch.
	URLTypeProductEdition
	// URLTypeProductEditionPublishedURL marks a published page probe,
	// successful or not.
	URLTypeProductEditionPublishedURL
)

var urlTypeNames = map[URLType]string{
	URLTypeProduct:                    "product",
	URLTypeProductEditions:            "product_editions",
	URLTypeProductEdition:             "product_edition",
	URLTypeProductEditionPublishedURL: "product_edition_published_url",
}

// String returns the wire name of the stage.
func (t URLType) String() string {
	if name, ok := urlTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t URLType) MarshalText() ([]byte, error) {
	name, ok := urlTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidURLType, int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *URLType) UnmarshalText(text []byte) error {
	for k, name := range urlTypeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidURLType, string(text))
}

// EditionResult is one leaf of the report: a published page probe or a
// failure captured at some stage of the pipeline.
type EditionResult struct {
	URL        string  `json:"url"`
	StatusCode int     `json:"status_code"`
	URLType    URLType `json:"url_type"`
}

// ProductReport is the health record of one product.
type ProductReport struct {
	// URL is the product's published URL, or nil when it is unknown or the
	// primary edition was never built.
	URL *string `json:"url"`

	// Editions is keyed by edition slug, or by the failing URL when the
	// identity could not be determined. Never nil.
	Editions map[string]EditionResult `json:"editions"`
}

// Report maps product keys to their records.
type Report map[string]ProductReport

// ProductKey identifies a product in the report. A product is either Known
// by its slug or Unresolved, keyed by the URL that failed before the slug
// could be read.
type ProductKey struct {
	value    string
	resolved bool
}

// Known returns the key of a product whose slug is known.
func Known(slug string) ProductKey {
	return ProductKey{value: slug, resolved: true}
}

// Unresolved returns the key of a product that failed before its slug was
// known.
func Unresolved(requestURL string) ProductKey {
	return ProductKey{value: requestURL}
}

// Resolved reports whether the key is a slug.
func (k ProductKey) Resolved() bool {
	return k.resolved
}

// String returns the report key.
func (k ProductKey) String() string {
	return k.value
}

// OverallStatus returns the highest status code of every edition entry in
// the report. It returns ErrNoEditions when there is nothing to summarise.
func OverallStatus(r Report) (int, error) {
	overall, seen := 0, false
	for _, product := range r {
		for _, edition := range product.Editions {
			if !seen || edition.StatusCode > overall {
				overall = edition.StatusCode
				seen = true
			}
		}
	}
	if !seen {
		return 0, ErrNoEditions
	}
	return overall, nil
}
