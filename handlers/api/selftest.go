package handlers

import (
	"net/http"

	"github.com/factorysh/selftest/dispatcher"
	"github.com/factorysh/selftest/owner"
	log "github.com/sirupsen/logrus"
)

// HandleSelfTest handles a post on the /self_test endpoint. The call is
// synchronous: it returns once the whole run is over, with the full report
// as body. Status is 200 for a completed run, passed or not, the payload
// carries the verdict.
func (a *API) HandleSelfTest(u *owner.Owner, w http.ResponseWriter,
	r *http.Request) (interface{}, error) {
	log.WithField("owner", u.Name).Info("Self test triggered")

	report, err := a.dispatcher.DoTest(r.Context())
	switch err {
	case nil:
		return report, nil
	case dispatcher.ErrTestPending:
		w.WriteHeader(http.StatusConflict)
		return nil, err
	case dispatcher.ErrNotLive:
		w.WriteHeader(http.StatusServiceUnavailable)
		return nil, err
	default:
		w.WriteHeader(http.StatusInternalServerError)
		return nil, err
	}
}
