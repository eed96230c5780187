package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"seastrike/internal/clock"
	"seastrike/internal/config"
	"seastrike/internal/coordinator"
	"seastrike/internal/logging"
	"seastrike/internal/presence"
	"seastrike/internal/rng"
	"seastrike/internal/session"
	"seastrike/internal/ws"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	clk := clock.New()
	pres := presence.NewRegistry(clk, cfg.ReconnectGrace)
	sessions := session.NewDirectory(clk, rng.New(cfg.RandSeed), cfg.RetentionWindow)
	coord := coordinator.New(pres, sessions, clk)
	coord.StartJanitor(context.Background(), cfg.SweepInterval)

	wsSrv := ws.NewServer(coord, cfg.HeartbeatInterval, cfg.SendBuffer)
	r := newRouter(coord, wsSrv)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Dur("reconnect_grace", cfg.ReconnectGrace).
		Dur("retention_window", cfg.RetentionWindow).
		Msg("relay listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
