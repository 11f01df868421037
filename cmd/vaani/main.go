package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/vaani/api"
	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/component"
	"github.com/skillsenselab/vaani/logger"
	"github.com/skillsenselab/vaani/observability"
	"github.com/skillsenselab/vaani/server"
	"github.com/skillsenselab/vaani/tempstore"
	"github.com/skillsenselab/vaani/transcription"
	"github.com/skillsenselab/vaani/transcription/conformerhf"
	"github.com/skillsenselab/vaani/transcription/conformeronnx"
	"github.com/skillsenselab/vaani/transcription/whisper"
	"github.com/skillsenselab/vaani/util"
	"github.com/skillsenselab/vaani/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vaani: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("main")
	log.Info("Starting vaani", map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("Observability shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Model registry: one lazily constructed handle per model key.
	modelRegistry := transcription.NewRegistry()
	modelRegistry.RegisterFactory(transcription.KindConformerONNX, conformeronnx.Factory(cfg.Backends.ConformerONNX))
	modelRegistry.RegisterFactory(transcription.KindConformerHF, conformerhf.Factory(cfg.Backends.ConformerHF))
	modelRegistry.RegisterFactory(transcription.KindWhisper, whisper.Factory(cfg.Backends.Whisper))
	log.Info("Backends configured", map[string]interface{}{
		"conformer_onnx": util.RedactURL(cfg.Backends.ConformerONNX.URL),
		"conformer_hf":   util.RedactURL(cfg.Backends.ConformerHF.URL),
		"whisper":        util.RedactURL(cfg.Backends.Whisper.URL),
	})

	engine := transcription.NewEngine(cfg.Engine, modelRegistry)

	if cfg.Observability.Enabled() {
		inst, err := observability.NewInstruments(observability.Meter(cfg.Name))
		if err != nil {
			return fmt.Errorf("creating instruments: %w", err)
		}
		engine.SetObserver(inst)
	}

	store := tempstore.New(cfg.TempStore)
	validator := audio.NewValidator(cfg.Audio)

	registry := component.NewRegistry()

	httpServer := server.New(cfg.HTTP, logger.NewDefault(cfg.Name))
	httpServer.ApplyDefaults(cfg.Name, registry.HealthAll)
	api.NewHandler(engine, validator, store).Register(httpServer.GinEngine())

	// Stop order is the reverse: server first so no new work arrives,
	// then the engine drains, then models close, then temp files sweep.
	for _, c := range []component.Component{
		store,
		modelRegistry,
		engine,
		server.NewComponent(httpServer),
	} {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("registering %s: %w", c.Name(), err)
		}
	}

	if err := registry.StartAll(ctx); err != nil {
		return fmt.Errorf("starting components: %w", err)
	}

	log.Info("vaani ready", map[string]interface{}{
		"addr": httpServer.Addr(),
	})

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := registry.StopAll(shutdownCtx); err != nil {
		return fmt.Errorf("stopping components: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}
