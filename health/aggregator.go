package health

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/ltdstatus/observe"
	"github.com/jonwraymond/ltdstatus/probe"
)

// Defaults for AggregatorConfig.
const (
	DefaultMaxProducts = 8
	DefaultMaxEditions = 16
)

// Prober performs upstream GETs. *probe.Client implements it.
type Prober interface {
	Get(ctx context.Context, rawURL string) (*probe.Response, error)
	GetJSON(ctx context.Context, rawURL string, v any) (*probe.Response, error)
}

// Checker produces a report. *Aggregator implements it.
type Checker interface {
	Check(ctx context.Context, product string) (Report, int, error)
}

// AggregatorConfig configures the aggregator.
type AggregatorConfig struct {
	// BaseURL is the keeper API root, e.g. https://keeper.lsst.codes.
	BaseURL string

	// MaxProducts bounds concurrent product probes.
	// Default: DefaultMaxProducts
	MaxProducts int

	// MaxEditions bounds concurrent edition probes within one product.
	// Default: DefaultMaxEditions
	MaxEditions int
}

// Aggregator walks products and editions and merges every probe into one
// report.
//
// Contract:
// - Concurrency: safe for concurrent use; each Check owns its own Store.
// - Context: cancellation turns outstanding probes into connection errors.
// - Errors: only discovery failure and an empty report are returned as errors.
type Aggregator struct {
	prober      Prober
	base        string
	maxProducts int
	maxEditions int
	mw          *observe.Middleware
	logger      observe.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithMiddleware instruments every probe.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(a *Aggregator) {
		if mw != nil {
			a.mw = mw
		}
	}
}

// WithLogger sets the logger for run-level events.
func WithLogger(logger observe.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates a new aggregator.
func NewAggregator(prober Prober, config AggregatorConfig, opts ...Option) *Aggregator {
	if config.MaxProducts <= 0 {
		config.MaxProducts = DefaultMaxProducts
	}
	if config.MaxEditions <= 0 {
		config.MaxEditions = DefaultMaxEditions
	}

	a := &Aggregator{
		prober:      prober,
		base:        strings.TrimRight(config.BaseURL, "/"),
		maxProducts: config.MaxProducts,
		maxEditions: config.MaxEditions,
		mw:          observe.NopMiddleware(),
		logger:      observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check builds a report for every product, or only for product when it is
// non-empty, and returns it with the highest status code observed.
func (a *Aggregator) Check(ctx context.Context, product string) (Report, int, error) {
	start := time.Now()

	products, err := a.productList(ctx, product)
	if err != nil {
		a.logger.Error(ctx, "product discovery failed", observe.F("error", err))
		return nil, 0, err
	}

	store := NewStore()
	var g errgroup.Group
	g.SetLimit(a.maxProducts)
	for _, productURL := range products {
		g.Go(func() error {
			a.checkProduct(ctx, store, productURL)
			return nil
		})
	}
	_ = g.Wait()

	report := store.Snapshot()
	overall, err := OverallStatus(report)

	a.logger.Info(ctx, "status check completed",
		observe.F("filter", product),
		observe.F("products", len(report)),
		observe.F("status_code", overall),
		observe.F("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	if err != nil {
		return report, 0, err
	}
	return report, overall, nil
}

func (a *Aggregator) productList(ctx context.Context, product string) ([]string, error) {
	if product != "" {
		return []string{a.productURL(product)}, nil
	}

	var doc productListDoc
	_, failure := a.fetch(ctx, observe.ProbeMeta{Stage: observe.StageProducts, URL: a.base + "/products"}, &doc)
	if failure != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, failure)
	}
	return doc.Products, nil
}

func (a *Aggregator) productURL(slug string) string {
	return a.base + "/products/" + url.PathEscape(slug)
}

// checkProduct probes one product and fans out over its editions.
func (a *Aggregator) checkProduct(ctx context.Context, store *Store, productURL string) {
	var doc productDoc
	_, failure := a.fetch(ctx, observe.ProbeMeta{Stage: observe.StageProduct, URL: productURL}, &doc)
	if failure != nil {
		store.RecordFailure(Unresolved(failure.URL), failedAt(failure, URLTypeProduct))
		return
	}

	key := Known(doc.Slug)
	store.PutProduct(key, doc.PublishedURL)

	var list editionListDoc
	_, failure = a.fetch(ctx, observe.ProbeMeta{
		Stage:   observe.StageEditions,
		Product: doc.Slug,
		URL:     a.productURL(doc.Slug) + "/editions",
	}, &list)
	if failure != nil {
		store.RecordFailure(key, failedAt(failure, URLTypeProductEditions))
		return
	}

	var g errgroup.Group
	g.SetLimit(a.maxEditions)
	for _, editionURL := range list.Editions {
		g.Go(func() error {
			a.checkEdition(ctx, store, key, doc.PublishedURL, editionURL)
			return nil
		})
	}
	_ = g.Wait()
}

// checkEdition probes one edition and, when it has been built, its
// published page.
func (a *Aggregator) checkEdition(ctx context.Context, store *Store, key ProductKey, productPublished *string, editionURL string) {
	var doc editionDoc
	_, failure := a.fetch(ctx, observe.ProbeMeta{
		Stage:   observe.StageEdition,
		Product: key.String(),
		URL:     editionURL,
	}, &doc)
	if failure != nil {
		store.RecordFailure(key, failedAt(failure, URLTypeProductEdition))
		return
	}

	if doc.BuildURL == nil {
		if productPublished != nil && doc.PublishedURL == *productPublished {
			store.ClearProductURL(key)
		}
		return
	}

	resp, failure := a.fetch(ctx, observe.ProbeMeta{
		Stage:   observe.StagePublishedURL,
		Product: key.String(),
		URL:     doc.PublishedURL,
	}, nil)

	result := EditionResult{URLType: URLTypeProductEditionPublishedURL}
	if failure != nil {
		result.URL, result.StatusCode = failure.URL, failure.StatusCode
	} else {
		result.URL, result.StatusCode = resp.URL, resp.StatusCode
	}
	store.PutEdition(key, doc.Slug, result)
}

// fetch runs one instrumented probe. With a nil v only the status matters;
// otherwise the body is decoded into v and validated.
func (a *Aggregator) fetch(ctx context.Context, meta observe.ProbeMeta, v any) (*probe.Response, *probe.Failure) {
	var (
		resp *probe.Response
		err  error
	)
	_, _ = a.mw.Wrap(func(ctx context.Context, meta observe.ProbeMeta) (int, error) {
		if v == nil {
			resp, err = a.prober.Get(ctx, meta.URL)
		} else {
			resp, err = a.prober.GetJSON(ctx, meta.URL, v)
			if err == nil {
				if vd, ok := v.(validator); ok {
					if verr := vd.validate(); verr != nil {
						err = probe.DecodeFailure(resp, verr)
					}
				}
			}
		}
		return statusOf(meta.URL, resp, err), err
	})(ctx, meta)

	return resp, probe.AsFailure(meta.URL, err)
}

func statusOf(rawURL string, resp *probe.Response, err error) int {
	if f := probe.AsFailure(rawURL, err); f != nil {
		return f.StatusCode
	}
	if resp != nil {
		return resp.StatusCode
	}
	return 0
}

func failedAt(f *probe.Failure, stage URLType) EditionResult {
	return EditionResult{URL: f.URL, StatusCode: f.StatusCode, URLType: stage}
}
