package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/avasiliev/docstream/internal/adapters/http"
	"github.com/avasiliev/docstream/internal/bootstrap"
	"github.com/avasiliev/docstream/internal/config"
	"github.com/avasiliev/docstream/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("docstream-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	opts := []httpadapter.RouterOption{}
	if cfg.APIRateLimitRPS > 0 {
		opts = append(opts, httpadapter.WithRateLimit(float64(cfg.APIRateLimitRPS), cfg.APIRateLimitBurst))
	}
	if cfg.APIMaxInFlight > 0 {
		opts = append(opts, httpadapter.WithBackpressure(cfg.APIMaxInFlight, 100*time.Millisecond))
	}

	router := httpadapter.NewRouter(app.IngestUC, app.ChatUC, app.Jobs, app.Events, app.Metrics, opts...).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
