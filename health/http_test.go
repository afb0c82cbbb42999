package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonwraymond/ltdstatus/probe"
)

type checkerFunc func(ctx context.Context, product string) (Report, int, error)

func (f checkerFunc) Check(ctx context.Context, product string) (Report, int, error) {
	return f(ctx, product)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %v, want 'text/plain'", rec.Header().Get("Content-Type"))
	}
}

func TestReportHandler_WritesOverallStatus(t *testing.T) {
	url := "https://keeper/products/b"
	c := checkerFunc(func(ctx context.Context, product string) (Report, int, error) {
		return Report{
			url: {Editions: map[string]EditionResult{url: {URL: url, StatusCode: 503, URLType: URLTypeProduct}}},
		}, 503, nil
	})

	rec := httptest.NewRecorder()
	ReportHandler(c, nil, nil)(rec, httptest.NewRequest(http.MethodGet, "/ltdstatus", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got Report
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[url].Editions[url].URLType != URLTypeProduct {
		t.Errorf("report = %v", got)
	}
}

func TestReportHandler_PassesFilter(t *testing.T) {
	var seen string
	c := checkerFunc(func(ctx context.Context, product string) (Report, int, error) {
		seen = product
		return Report{}, 200, nil
	})

	productFn := func(r *http.Request) string { return r.URL.Query().Get("product") }
	rec := httptest.NewRecorder()
	ReportHandler(c, productFn, nil)(rec, httptest.NewRequest(http.MethodGet, "/ltdstatus?product=ldm-151", nil))

	if seen != "ldm-151" {
		t.Errorf("filter = %q, want %q", seen, "ldm-151")
	}
}

func TestReportHandler_ClientDisconnectDoesNotCancelCheck(t *testing.T) {
	var checkErr error
	c := checkerFunc(func(ctx context.Context, product string) (Report, int, error) {
		checkErr = ctx.Err()
		return Report{}, 200, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/ltdstatus", nil).WithContext(ctx)
	ReportHandler(c, nil, nil)(httptest.NewRecorder(), req)

	if checkErr != nil {
		t.Errorf("check context error = %v, want nil after client disconnect", checkErr)
	}
}

func TestReportHandler_DisconnectedClientRecordsRealStatus(t *testing.T) {
	k := newFakeKeeper(t)
	k.product("a", "main")
	k.edition("a", "main", http.StatusOK)

	var seen Report
	agg := k.aggregator()
	c := checkerFunc(func(ctx context.Context, product string) (Report, int, error) {
		report, status, err := agg.Check(ctx, product)
		seen = report
		return report, status, err
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/ltdstatus/a", nil).WithContext(ctx)
	ReportHandler(c, func(*http.Request) string { return "a" }, nil)(httptest.NewRecorder(), req)

	if got := seen["a"].Editions["main"].StatusCode; got != http.StatusOK {
		t.Errorf("main status = %d, want 200; report = %+v", got, seen)
	}
}

func TestReportHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		wantBody   string
	}{
		{
			name: "discovery failure keeps upstream status",
			err: fmt.Errorf("%w: %w", ErrDiscovery, &probe.Failure{
				URL: "https://keeper/products", StatusCode: 404, Reason: "Not Found", Body: "nope", Err: probe.ErrStatus,
			}),
			wantStatus: 404,
			wantReason: "Not Found",
			wantBody:   "nope",
		},
		{
			name: "discovery connection error",
			err: fmt.Errorf("%w: %w", ErrDiscovery,
				probe.TransportFailure("https://keeper/products", fmt.Errorf("dial tcp: connection refused"))),
			wantStatus: 502,
			wantReason: "Connection Error",
			wantBody:   "dial tcp: connection refused",
		},
		{
			name:       "empty report",
			err:        ErrNoEditions,
			wantStatus: 500,
			wantReason: "Internal Server Error",
			wantBody:   ErrNoEditions.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := checkerFunc(func(ctx context.Context, product string) (Report, int, error) {
				return nil, 0, tt.err
			})

			rec := httptest.NewRecorder()
			ReportHandler(c, nil, nil)(rec, httptest.NewRequest(http.MethodGet, "/ltdstatus", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			want := ErrorResponse{Reason: tt.wantReason, StatusCode: tt.wantStatus, Content: tt.wantBody}
			if got != want {
				t.Errorf("body = %+v, want %+v", got, want)
			}
		})
	}
}

func TestWriteJSON_InvalidStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 0, map[string]string{})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", rec.Code)
	}
}

func TestReportHandler_EndToEnd(t *testing.T) {
	k := newFakeKeeper(t)
	k.product("a", "main")
	k.edition("a", "main", http.StatusOK)

	productFn := func(r *http.Request) string { return "a" }
	rec := httptest.NewRecorder()
	ReportHandler(k.aggregator(), productFn, nil)(rec, httptest.NewRequest(http.MethodGet, "/ltdstatus/a", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var got map[string]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["a"]["url"] != k.base()+"/docs/a" {
		t.Errorf("a.url = %v", got["a"]["url"])
	}
}
