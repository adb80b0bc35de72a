package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/factorysh/selftest/dispatcher"
	"github.com/factorysh/selftest/middlewares"
	"github.com/factorysh/selftest/owner"
	"github.com/factorysh/selftest/pubsub"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
)

type API struct {
	dispatcher *dispatcher.Dispatcher
	events     *pubsub.PubSub
}

// RegisterAPI wires the self test endpoints on the router
func RegisterAPI(router *mux.Router, d *dispatcher.Dispatcher, events *pubsub.PubSub, authKey string) {
	api := &API{
		dispatcher: d,
		events:     events,
	}
	router.Use(middlewares.Auth(authKey))
	router.HandleFunc("/self_test", api.wrapMyHandler(api.HandleSelfTest)).Methods(http.MethodPost)
	router.HandleFunc("/self_test/events", api.HandleEvents).Methods(http.MethodGet)
}

func (a *API) wrapMyHandler(handler func(*owner.Owner, http.ResponseWriter,
	*http.Request) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		hub := sentry.GetHubFromContext(r.Context())
		u, err := owner.FromCtx(r.Context())
		if err != nil {
			if hub != nil {
				hub.CaptureException(err)
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, err := handler(u, w, r)
		if err != nil {
			if hub != nil {
				hub.CaptureException(err)
			}
			return
		}
		if data != nil {
			json.NewEncoder(w).Encode(data)
		}
	}
}
