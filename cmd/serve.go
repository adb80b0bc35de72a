package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/factorysh/selftest/config"
	"github.com/factorysh/selftest/server"
	"github.com/factorysh/selftest/status"
	"github.com/factorysh/selftest/version"
)

var configPath string

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "yaml config file")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the self test REST API",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {

		dsn := os.Getenv("SENTRY_DSN")
		if dsn != "" {
			err := sentry.Init(sentry.ClientOptions{
				Dsn:     dsn,
				Release: version.Version(),
			})
			if err != nil {
				return err
			}
			// Flush buffered events before the program terminates.
			defer sentry.Flush(2 * time.Second)
			sentry.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("service", "selftest")
			})
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		s := server.New(cfg)
		registerBuiltins(s)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		fmt.Println("Listening", s.Addr)
		go s.Run(ctx)
		<-done
		fmt.Println("Bye")
		cancel()
		return nil
	},
}

// registerBuiltins adds the process-level tests every instance carries.
// They double as a wiring example for the owning service.
func registerBuiltins(s *server.Server) {
	d := s.Dispatcher
	d.Add("Hostname", func(r *status.Record) error {
		hostname, err := os.Hostname()
		if err != nil {
			return err
		}
		d.SetID(hostname)
		r.Summary(status.OK, hostname)
		return nil
	})
	d.Add("Goroutines", func(r *status.Record) error {
		n := runtime.NumGoroutine()
		if n > 1000 {
			r.Summaryf(status.Warn, "%d goroutines, something is leaking", n)
			return nil
		}
		r.Summaryf(status.OK, "%d goroutines", n)
		return nil
	})
}
