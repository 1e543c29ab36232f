package handler

import (
	"net/http"

	geminihttp "github.com/awantoch/geminiproxy/http"
)

// Handler is the entry point for the Vercel serverless function at
// /api/geminiProxy.
func Handler(w http.ResponseWriter, r *http.Request) {
	geminihttp.ServerlessHandler(w, r)
}
