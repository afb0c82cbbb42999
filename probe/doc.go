// Package probe performs single upstream GET requests and classifies them.
//
// A probe succeeds when the upstream answers with a status in [200,299] (and,
// for GetJSON, a body that decodes). Everything else is a *Failure with a
// stable shape: URL, StatusCode, Reason and Body. Decode errors are reported
// as status 500 "JSON Decode Error" and transport errors as status 502
// "Connection Error", so callers can record any failure the same way.
//
//	client := probe.NewClient(probe.Config{UserAgent: "ltdstatus/0.1.0"})
//
//	var doc struct {
//	    Products []string `json:"products"`
//	}
//	if _, err := client.GetJSON(ctx, base+"/products", &doc); err != nil {
//	    f := probe.AsFailure(base+"/products", err)
//	    log.Printf("%d %s", f.StatusCode, f.Reason)
//	}
package probe
