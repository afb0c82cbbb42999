// Package server exposes the status report over HTTP.
//
// Routes are mounted at both / and /ltdstatus:
//
//	GET /                       liveness, plain "OK"
//	GET /ltdstatus[/]           full report, status = overall status
//	GET /ltdstatus/{product}    report for one product
//	GET /metadata               service metadata
//	GET /ltdstatus/metadata     service metadata
//	GET /metrics                Prometheus exposition
package server
