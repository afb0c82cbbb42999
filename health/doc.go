// Package health walks the keeper API and reports the health of every
// product's published editions.
//
// # Pipeline
//
// An Aggregator discovers products from {base}/products (or takes a single
// product filter), probes each product, lists its editions and probes every
// built edition's published URL. Each probe that fails is recorded as data
// in a Store with the stage it failed at, so one broken edition never hides
// the health of the rest:
//
//	agg := health.NewAggregator(client, health.AggregatorConfig{
//	    BaseURL: "https://keeper.lsst.codes",
//	})
//	report, status, err := agg.Check(ctx, "")
//
// status is the highest status code in the report. Only failure to fetch
// the product list (ErrDiscovery) and an empty report (ErrNoEditions) are
// returned as errors.
//
// # Concurrency
//
// Products and, within each product, editions are probed concurrently with
// separate limits (MaxProducts, MaxEditions). All results go through one
// mutex-guarded Store that is read only after every probe has joined.
//
// # HTTP Endpoints
//
//	http.Handle("/", health.LivenessHandler())
//	http.Handle("/ltdstatus", health.ReportHandler(agg, nil, logger))
package health
