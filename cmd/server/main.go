package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"foodbank-finder/internal/api"
	"foodbank-finder/internal/catalog"
	"foodbank-finder/internal/config"
	"foodbank-finder/internal/db"
	"foodbank-finder/internal/events"
	"foodbank-finder/internal/logger"
	"foodbank-finder/internal/position"
	"foodbank-finder/internal/source"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		log.Fatal("failed to load regions manifest", zap.Error(err))
	}

	store, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	datasets := make([]catalog.Dataset, 0, len(regions))
	for _, r := range regions {
		datasets = append(datasets, catalog.Dataset{
			ID:    r.ID,
			Label: r.Label,
			Path:  filepath.Join(cfg.DataDir, r.CSV),
		})
	}

	bus := events.NewBus()
	go logEvents(ctx, bus, log)

	cat := catalog.New(catalog.Options{
		Loader:   source.CSVLoader{},
		Datasets: datasets,
		Bus:      bus,
	})

	// Load failure is not fatal: the API serves an empty catalog with a
	// retry path until a region loads.
	if err := cat.SwitchDataset(ctx, cfg.DefaultRegion); err != nil {
		log.Error("initial dataset load failed", zap.String("region", cfg.DefaultRegion), zap.Error(err))
	}

	if cfg.EnableWatcher {
		watcher := source.NewWatcher(cfg.DataDir, log, func(file string) {
			region, ok := cat.RegionForFile(file)
			if !ok {
				return
			}
			if err := cat.Reload(ctx, region); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
				log.Warn("dataset reload failed", zap.String("region", region), zap.Error(err))
			}
		})
		if err := watcher.Start(ctx); err != nil {
			log.Warn("dataset watcher unavailable", zap.Error(err))
		}
	}

	go runTicker(ctx, cat, cfg.TickInterval)

	provider := position.NewGeocoder(cfg.NominatimURL)
	router := api.NewRouter(cat, store, provider, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}

// runTicker drives the once-per-minute status recomputation.
func runTicker(ctx context.Context, cat *catalog.Catalog, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cat.Tick()
		}
	}
}

// logEvents surfaces catalog lifecycle events.
func logEvents(ctx context.Context, bus *events.Bus, log *zap.Logger) {
	sub := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sub:
			switch e := ev.(type) {
			case events.DatasetLoaded:
				log.Info("dataset loaded",
					zap.String("region", e.Region),
					zap.Int("records", e.Count),
					zap.Int("dropped_rows", e.Dropped))
			case events.LoadDiscarded:
				log.Info("stale dataset load discarded", zap.String("region", e.Region))
			case events.Ticked:
				log.Debug("status tick", zap.String("region", e.Region), zap.Int("open_now", e.OpenNow))
			case events.PositionSet:
				log.Info("user position set", zap.Float64("lat", e.Lat), zap.Float64("lng", e.Lng))
			}
		}
	}
}
