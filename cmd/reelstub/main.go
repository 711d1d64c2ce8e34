// reelstub sert une implémentation en mémoire du service de transcription,
// pour développer et tester reelscribe sans le vrai service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/patrickprogramme/reelscribe/internal/discovery"
	"github.com/patrickprogramme/reelscribe/internal/stub"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	noCache := flag.Bool("no-cache", false, "ne pas mettre en cache (pas de cache_key ni de téléchargements)")
	failTranscribe := flag.String("fail-transcribe", "", "corps d'erreur renvoyé (502) par /api/transcribe")
	advertise := flag.Bool("mdns", false, "annoncer le service sur le réseau local")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	svc := stub.New()
	svc.SetCache(!*noCache)
	if *failTranscribe != "" {
		svc.FailTranscribe(http.StatusBadGateway, *failTranscribe)
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      svc.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting stub server", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	if *advertise {
		if stop, err := advertiseStub(*addr); err != nil {
			slog.Warn("mdns advertise", "error", err)
		} else {
			defer stop()
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func advertiseStub(addr string) (func(), error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "reelstub"
	}
	slog.Info("advertising over mdns", "service", discovery.Service, "port", port)
	return discovery.Advertise("reelstub-"+host, port, []string{"path=/api"})
}
