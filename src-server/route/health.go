package route

import (
	"net/http"
)

// Health answers liveness probes.
func Health(muxer *http.ServeMux) {
	muxer.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
