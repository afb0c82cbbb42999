package probe

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors wrapped by Failure.
var (
	// ErrStatus indicates the upstream answered outside the 2xx range.
	ErrStatus = errors.New("probe: unexpected status")

	// ErrDecode indicates a 2xx body that could not be decoded.
	ErrDecode = errors.New("probe: could not decode body")

	// ErrTransport indicates no HTTP response was received at all.
	ErrTransport = errors.New("probe: transport error")
)

// Synthetic failure metadata. Decode and transport failures are reported with
// the same shape as an HTTP failure so downstream stages handle one case.
const (
	DecodeStatus    = http.StatusInternalServerError
	DecodeReason    = "JSON Decode Error"
	DecodePrefix    = "Could not decode: "
	TransportStatus = http.StatusBadGateway
	TransportReason = "Connection Error"
)

// Failure describes a probe that did not produce a usable response.
type Failure struct {
	// URL is the effective URL of the response, or the requested URL when
	// no response was received.
	URL string

	// StatusCode is the upstream status, or a synthetic one for decode and
	// transport failures.
	StatusCode int

	// Reason is the HTTP reason phrase.
	Reason string

	// Body is the response text.
	Body string

	// Err classifies the failure (ErrStatus, ErrDecode or ErrTransport).
	Err error
}

// Error implements error.
func (f *Failure) Error() string {
	return fmt.Sprintf("probe: GET %s: %d %s", f.URL, f.StatusCode, f.Reason)
}

// Unwrap returns the classifying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// statusFailure builds the failure for a non-2xx response.
func statusFailure(resp *Response) *Failure {
	return &Failure{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason,
		Body:       resp.Text(),
		Err:        ErrStatus,
	}
}

// DecodeFailure builds the failure for a 2xx response whose body is not the
// expected document. cause may be nil.
func DecodeFailure(resp *Response, cause error) *Failure {
	err := ErrDecode
	if cause != nil {
		err = errors.Join(ErrDecode, cause)
	}
	return &Failure{
		URL:        resp.URL,
		StatusCode: DecodeStatus,
		Reason:     DecodeReason,
		Body:       DecodePrefix + resp.Text(),
		Err:        err,
	}
}

// TransportFailure builds the failure for a request that got no response.
func TransportFailure(rawURL string, cause error) *Failure {
	return &Failure{
		URL:        rawURL,
		StatusCode: TransportStatus,
		Reason:     TransportReason,
		Body:       cause.Error(),
		Err:        errors.Join(ErrTransport, cause),
	}
}

// AsFailure returns the *Failure inside err. Any other non-nil error is
// reported as a transport failure of rawURL, so callers always get a
// failure to record.
func AsFailure(rawURL string, err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return TransportFailure(rawURL, err)
}

// ErrBodyTooLarge reports a body that exceeded the configured read limit.
type ErrBodyTooLarge struct {
	Limit int64
}

func (e ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("probe: body exceeded limit of %d bytes", e.Limit)
}
