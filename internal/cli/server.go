package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/config"
	"weekly-quiz-service/internal/domain"
	transport "weekly-quiz-service/internal/transport/http"

	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	service := newService(cfg, b)

	var jwtService *auth.JWTService
	if cfg.Auth.JWTSecret != "" {
		jwtService = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Service:         service,
			JWT:             jwtService,
			TopPlayersLimit: cfg.Quiz.TopPlayersLimit,
			Logger:          slog.Default(),
		}),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("starting quiz service", "port", finalPort, "driver", cfg.Store.Driver, "auth", jwtService != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func domainPrizePool(cfg config.Config) domain.PrizePool {
	return domain.PrizePool{
		TotalAmount: cfg.PrizePool.TotalAmount,
		FirstPlace:  cfg.PrizePool.FirstPlace,
		SecondPlace: cfg.PrizePool.SecondPlace,
		ThirdPlace:  cfg.PrizePool.ThirdPlace,
		Currency:    cfg.PrizePool.Currency,
	}
}
