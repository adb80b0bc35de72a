package server

import (
	"context"
	"net/http"
	"time"

	"github.com/factorysh/selftest/config"
	"github.com/factorysh/selftest/dispatcher"
	handlers "github.com/factorysh/selftest/handlers/api"
	"github.com/factorysh/selftest/pubsub"
	"github.com/factorysh/selftest/runner"
	"github.com/factorysh/selftest/version"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/robfig/cron"
	log "github.com/sirupsen/logrus"
)

// Server glues the dispatcher, the runner loop and the HTTP transport
type Server struct {
	Dispatcher *dispatcher.Dispatcher
	Runner     *runner.Runner
	Events     *pubsub.PubSub
	Addr       string
	AuthKey    string
	Schedule   string
}

// New initializes a server instance. Tests are registered on the returned
// Dispatcher before Run makes the trigger reachable.
func New(cfg *config.Config) *Server {
	events := pubsub.NewPubSub()
	d := dispatcher.New()
	if cfg.WaitTimeout > 0 {
		d.WaitTimeout = time.Duration(cfg.WaitTimeout)
	}
	d.Events = events

	return &Server{
		Dispatcher: d,
		Runner:     runner.New(d, time.Duration(cfg.Tick)),
		Events:     events,
		Addr:       cfg.Listen,
		AuthKey:    cfg.AuthKey,
		Schedule:   cfg.Schedule,
	}
}

// Run starts the runner loop and serves the API until ctx is done
func (s *Server) Run(ctx context.Context) {

	ctxRunner, cancelRunner := context.WithCancel(context.Background())
	defer cancelRunner()
	go s.Runner.Start(ctxRunner)

	// the trigger path skips the tests once shutdown has begun
	s.Dispatcher.Live = func() bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	if s.Schedule != "" {
		c := cron.New()
		err := c.AddFunc(s.Schedule, func() {
			report, err := s.Dispatcher.DoTest(context.Background())
			if err != nil {
				log.WithError(err).Warn("Scheduled self test skipped")
				return
			}
			log.WithFields(log.Fields{
				"run_id": report.RunID,
				"passed": report.Passed,
			}).Info("Scheduled self test")
		})
		if err != nil {
			log.WithError(err).Fatal("Bad self test schedule")
		}
		c.Start()
		defer c.Stop()
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "text/plain")
		w.Write([]byte(`
		 ____       _  __ _            _
		/ ___|  ___| |/ _| |_ ___  ___| |_
		\___ \ / _ \ | |_| __/ _ \/ __| __|
		 ___) |  __/ |  _| ||  __/\__ \ |_
		|____/ \___|_|_|  \__\___||___/\__|
		`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-type", "text/plain")
		w.Write([]byte(version.Version()))
	}).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	handlers.RegisterAPI(router.PathPrefix("/api").Subrouter(), s.Dispatcher, s.Events, s.AuthKey)
	server := &http.Server{
		Addr:    s.Addr,
		Handler: sentryHandler.HandleFunc(router.ServeHTTP),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.TODO(), 3*time.Second)
	defer cancelShutdown()
	server.Shutdown(ctxShutdown)
}
