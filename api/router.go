package api

import (
	"context"
	"net/http"

	"github.com/supportta-projects/waterpurifier-sub000/internal/app"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
)

// SetupRouter builds the same router as the server binary. Cron jobs do not
// run in the serverless entry point.
func SetupRouter() (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Jobs.DisableCronJob = true

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return application.Router, nil
}
