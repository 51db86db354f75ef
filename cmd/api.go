package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coursetube/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the Data API with the configured key.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if r.api == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !useJSON)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
