package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"go.uber.org/zap"
)

var (
	once     sync.Once
	setup    = SetupRouter
	router   http.Handler
	setupErr error
)

// Handler is the serverless entry point. The router is built on the first
// request and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		router, setupErr = setup()
		if setupErr != nil {
			zap.L().Error("serverless setup failed", zap.Error(setupErr))
		}
	})
	if setupErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error:   "internal error",
			Message: "service is starting up, try again later",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	router.ServeHTTP(w, r)
}
