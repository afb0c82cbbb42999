// Command ltdstatus reports the health of LSST the Docs products.
//
//	ltdstatus serve            run the HTTP service
//	ltdstatus check [product]  run one check and print the report
package main

import (
	"context"
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ltdstatus:", err)
		os.Exit(1)
	}
}
