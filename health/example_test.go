package health_test

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonwraymond/ltdstatus/health"
)

func ExampleOverallStatus() {
	report := health.Report{
		"ldm-151": {
			Editions: map[string]health.EditionResult{
				"main": {StatusCode: 200},
				"v1":   {StatusCode: 404},
			},
		},
	}
	status, err := health.OverallStatus(report)
	fmt.Println(status, err)
	// Output:
	// 404 <nil>
}

func ExampleStore() {
	store := health.NewStore()
	published := "https://ldm-151.lsst.io"
	key := health.Known("ldm-151")

	store.PutProduct(key, &published)
	store.PutEdition(key, "main", health.EditionResult{
		URL:        published,
		StatusCode: 200,
		URLType:    health.URLTypeProductEditionPublishedURL,
	})

	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(store.Snapshot())
	// Output:
	// {"ldm-151":{"url":"https://ldm-151.lsst.io","editions":{"main":{"url":"https://ldm-151.lsst.io","status_code":200,"url_type":"product_edition_published_url"}}}}
}
