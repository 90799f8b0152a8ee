package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ecoruta/portal/internal/api"
	"github.com/ecoruta/portal/internal/infrastructure/http/handlers"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the portal",
		Annotations: map[string]string{annotationServer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.Connect(ctx); err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				app.cfg.Portal.Port = port
			}

			e := api.NewRouter(api.Dependencies{
				Session:  app.session,
				Services: app.services,
				Checks:   map[string]handlers.Check{"token_store": app.tokens.Ping},
				Log:      app.log.With().Str("component", "portal").Logger(),
			})

			// Requests arriving before the check completes get 503 from the guard.
			go app.session.Start(ctx)

			return runServer(ctx, e, ":"+app.cfg.Portal.Port, app.log)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (or ECORUTA_PORTAL_PORT)")
	return cmd
}

// runServer serves e until ctx is cancelled, then drains in-flight requests.
func runServer(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
