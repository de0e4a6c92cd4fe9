package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/thushan/redis-watcher/internal/version"
)

type VersionResponse struct {
	version.Info
	Endpoints map[string]string `json:"endpoints"`
	Links     map[string]string `json:"links"`
}

func (a *Application) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := VersionResponse{
		Info: version.Current(),
		Endpoints: map[string]string{
			"health":  "/internal/health",
			"status":  "/internal/status",
			"metrics": "/metrics",
			"version": "/version",
		},
		Links: map[string]string{
			"homepage": version.GithubHomeUri,
			"releases": version.GithubLatestUri,
		},
	}

	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(response)
}
