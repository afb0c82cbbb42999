package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ltdstatus/config"
	"github.com/jonwraymond/ltdstatus/health"
)

// statusError reports a check whose overall status is a failure.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("overall status %d", e.status)
}

func newCheckCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check [product]",
		Short: "Run one check and print the report",
		Long: `Run one check against the keeper API and print the JSON report.
The command exits non-zero when the overall status is 400 or above.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configFile)
			if err != nil {
				return err
			}

			var product string
			if len(args) == 1 {
				product = args[0]
			}
			return runCheck(cmd.Context(), cfg, product, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runCheck(ctx context.Context, cfg *config.Config, product string, out, logOut io.Writer) error {
	a, err := newApp(ctx, cfg, logOut)
	if err != nil {
		return err
	}
	defer func() { _ = a.shutdown(context.Background()) }()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	report, status, err := a.checker.Check(ctx, product)
	if err != nil {
		resp := health.NewErrorResponse(err)
		if encErr := enc.Encode(resp); encErr != nil {
			return encErr
		}
		return &statusError{status: resp.StatusCode}
	}

	if err := enc.Encode(report); err != nil {
		return err
	}
	if status >= 400 {
		return &statusError{status: status}
	}
	return nil
}
