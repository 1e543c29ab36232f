package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/core"
	"github.com/awantoch/geminiproxy/logger"
	"github.com/awantoch/geminiproxy/telemetry"
)

var (
	initServerless    sync.Once
	initErr           error
	serverlessHandler http.Handler
)

// ServerlessHandler is the function entry point shared by the Vercel and
// Lambda deployments. Configuration comes from the environment only and is
// read on the first invocation of a warm instance.
func ServerlessHandler(w http.ResponseWriter, r *http.Request) {
	initServerless.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			initErr = err
			return
		}
		logger.SetLevel(cfg.Log.Level)
		// Tracing stays up for the life of the instance.
		if _, err := telemetry.Init(cfg); err != nil {
			logger.Warn("Tracing disabled: %v", err)
		}
		deps, _, err := core.InitializeDependencies(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}
		serverlessHandler = telemetry.WrapHandler(proxyHandlerName, deps.Handler)
	})

	if initErr != nil {
		logger.Error("Serverless initialization failed: %v", initErr)
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": constants.ResponseInternalError})
		return
	}
	serverlessHandler.ServeHTTP(w, r)
}
