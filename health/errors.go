package health

import "errors"

var (
	// ErrDiscovery indicates the product list could not be fetched. No
	// report is produced.
	ErrDiscovery = errors.New("health: product discovery failed")

	// ErrNoEditions indicates a report without any edition entry, so no
	// overall status exists.
	ErrNoEditions = errors.New("health: report has no edition results")

	// ErrInvalidURLType indicates an unknown url_type value.
	ErrInvalidURLType = errors.New("health: invalid url type")
)

// errMissingField reports a required field absent from an upstream document.
type errMissingField string

func (e errMissingField) Error() string {
	return "health: missing field " + string(e)
}
