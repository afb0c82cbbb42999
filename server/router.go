package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/ltdstatus/health"
	"github.com/jonwraymond/ltdstatus/observe"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", health.LivenessHandler())
	r.Get("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP)

	meta := metadataHandler(s.metadata)
	r.Get("/metadata", meta)

	report := health.ReportHandler(s.checker, productParam, s.logger)
	r.Route("/ltdstatus", func(r chi.Router) {
		r.Get("/", report)
		r.Get("/metadata", meta)
		r.Get("/{product}", report)
	})

	return r
}

func productParam(r *http.Request) string {
	return chi.URLParam(r, "product")
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger observe.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info(r.Context(), "http request",
				observe.F("method", r.Method),
				observe.F("path", r.URL.Path),
				observe.F("status_code", status),
				observe.F("bytes", ww.BytesWritten()),
				observe.F("duration_ms", time.Since(start).Milliseconds()),
				observe.F("remote_addr", r.RemoteAddr),
				observe.F("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
