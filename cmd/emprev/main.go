// Package main содержит точку входа сервиса emprev: HTTP сервер бэкенда
// сотрудников и выручки с фасадом логирования, метриками и трейсингом.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kargones/emprev/internal/config"
	"github.com/Kargones/emprev/internal/constants"
	"github.com/Kargones/emprev/internal/di"
	"github.com/Kargones/emprev/internal/pkg/httplog"
	"github.com/Kargones/emprev/internal/pkg/metrics"
)

func main() {
	os.Exit(run())
}

// run возвращает exit code: 0 — штатное завершение, 2 — ошибка конфигурации,
// 3 — ошибка инициализации, 1 — ошибка сервера.
func run() int {
	cfg, err := config.Load("")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "emprev: %v\n", err) //nolint:errcheck // bootstrap stderr
		return 2
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "emprev: инициализация: %v\n", err) //nolint:errcheck // bootstrap stderr
		return 3
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := serve(ctx, app)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := app.Close(shutdownCtx); err != nil {
		app.Logger.Warn("ошибка завершения", slog.String("error", err.Error()))
	}
	return code
}

// serve запускает HTTP сервер и ждёт отмены ctx или ошибки сервера.
func serve(ctx context.Context, app *di.App) int {
	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           httplog.Middleware(app.Facade)(newMux(app)),
		ReadHeaderTimeout: app.Config.HTTP.ReadTimeout,
		ReadTimeout:       app.Config.HTTP.ReadTimeout,
		WriteTimeout:      app.Config.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("HTTP сервер запущен",
			slog.String("addr", srv.Addr),
			slog.String("version", constants.Version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("HTTP сервер остановлен с ошибкой", slog.String("error", err.Error()))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	app.Logger.Info("получен сигнал завершения, остановка HTTP сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("ошибка graceful shutdown", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// newMux регистрирует служебные обработчики.
// /metrics доступен только при включённых Prometheus метриках.
func newMux(app *di.App) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.PathHealth, healthHandler(app))
	if pc, ok := app.MetricsCollector.(*metrics.PrometheusCollector); ok {
		mux.Handle("GET "+constants.PathMetrics, pc.Handler())
	}
	return mux
}

// healthHandler отвечает 200, если база (при наличии) доступна, иначе 503.
func healthHandler(app *di.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.Database != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.Database.Ping(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok")) //nolint:errcheck // health response
	}
}
