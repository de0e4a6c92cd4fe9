package handlers

import (
	"net/http"
)

var responseJSON = []byte(`{"status":"healthy"}`)

// healthHandler reports on the watcher process itself, not the store it watches
func (a *Application) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(responseJSON)
}
