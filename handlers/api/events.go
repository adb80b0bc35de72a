package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HandleEvents streams run lifecycle events as server-sent events until the
// client goes away
func (a *API) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	events := a.events.Subscribe(ctx)
	for {
		select {
		case evt := <-events:
			blob, err := json.Marshal(evt)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", blob)
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
