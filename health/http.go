package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/ltdstatus/observe"
	"github.com/jonwraymond/ltdstatus/probe"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReportHandler returns an HTTP handler that runs a check and writes the
// report with the overall status as the response code. productFn extracts
// the optional product filter from the request; nil means no filter.
func ReportHandler(c Checker, productFn func(*http.Request) string, logger observe.Logger) http.HandlerFunc {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var product string
		if productFn != nil {
			product = productFn(r)
		}

		// Probes outlive a disconnected client so they are not recorded
		// as upstream connection errors.
		ctx := context.WithoutCancel(r.Context())

		report, status, err := c.Check(ctx, product)
		if err != nil {
			resp := NewErrorResponse(err)
			logger.WithProduct(product).Error(r.Context(), "status check failed",
				observe.F("reason", resp.Reason),
				observe.F("status_code", resp.StatusCode),
				observe.F("content", resp.Content),
			)
			WriteError(w, err)
			return
		}

		WriteJSON(w, status, report)
	}
}

// ErrorResponse is the JSON body of a request-level failure.
type ErrorResponse struct {
	Reason     string `json:"reason"`
	StatusCode int    `json:"status_code"`
	Content    string `json:"content"`
}

// Error implements error.
func (e ErrorResponse) Error() string {
	return e.Reason + ": " + e.Content
}

// NewErrorResponse builds the envelope for err. An upstream failure keeps
// its status, reason and body; anything else is a 500.
func NewErrorResponse(err error) ErrorResponse {
	var f *probe.Failure
	if errors.As(err, &f) {
		return ErrorResponse{Reason: f.Reason, StatusCode: f.StatusCode, Content: f.Body}
	}
	var e ErrorResponse
	if errors.As(err, &e) {
		return e
	}
	return ErrorResponse{
		Reason:     http.StatusText(http.StatusInternalServerError),
		StatusCode: http.StatusInternalServerError,
		Content:    err.Error(),
	}
}

// WriteError writes err as an ErrorResponse.
func WriteError(w http.ResponseWriter, err error) {
	resp := NewErrorResponse(err)
	WriteJSON(w, resp.StatusCode, resp)
}

// WriteJSON writes v with the given status. Codes outside the valid HTTP
// range are written as 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 999 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
