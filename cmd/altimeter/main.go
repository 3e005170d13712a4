package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altimeter/internal/api"
	"altimeter/pkg/baro"
	"altimeter/pkg/config"
	"altimeter/pkg/db"
	"altimeter/pkg/db/maintenance"
	"altimeter/pkg/draw/raster"
	"altimeter/pkg/instrument"
	"altimeter/pkg/logging"
	"altimeter/pkg/probe"
	"altimeter/pkg/sensor"
	"altimeter/pkg/store"
	"altimeter/pkg/version"
)

var (
	configPath = flag.String("config", "configs/altimeter.yaml", "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	replayPath = flag.String("replay", "", "Analyze a recorded CSV and exit")
	plotPath   = flag.String("plot", "", "With -replay: write an altitude and VSI chart (PNG)")
	varioPath  = flag.String("vario", "", "With -replay: write variometer audio (WAV)")
	renderPath = flag.String("render", "", "With -replay: write the final instrument face (PNG)")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if *replayPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		opts := replayOptions{Input: *replayPath, Plot: *plotPath, Vario: *varioPath, Render: *renderPath}
		if err := runReplay(context.Background(), cfg, os.Stdout, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Altimeter Started", "version", version.Version, "commit", version.Commit())

	dbConn, st, err := initDB(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := maintenance.Run(ctx, st, dbConn, cfg.Sensor.ReplayFile, time.Duration(cfg.DB.Retention)); err != nil {
		slog.Error("Maintenance tasks failed", "error", err)
	}

	probes := []probe.Probe{
		{Name: "Database", Check: dbConn.PingContext, Critical: true},
	}
	if cfg.Sensor.Provider == config.SensorReplay {
		probes = append(probes, probe.Probe{Name: "Sensor Recording", Check: probe.FileReadable(cfg.Sensor.ReplayFile), Critical: true})
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	prov := config.NewProvider(cfg, st)
	face, err := raster.NewFace(cfg.Gauge.FontSize)
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	alt, err := newAltimeter(cfg, face)
	if err != nil {
		return err
	}
	if mb, ok := prov.LastPressure(ctx); ok {
		alt.SeedPressure(mb)
	}

	metrics := api.NewMetrics()
	opts := []api.DisplayOption{api.WithFont(face)}
	if cfg.Sensor.Record {
		opts = append(opts, api.WithRecorder(st))
	}
	display, err := api.NewDisplay(ctx, alt, prov, metrics, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	if s := display.Session(); s != "" {
		slog.Info("Recording samples", "session", s)
	}

	src, closeSrc, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	sensorDone := make(chan struct{})
	go func() {
		defer close(sensorDone)
		if err := display.Run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Sensor loop stopped", "error", err)
		}
	}()

	defer func() {
		cancel()
		<-sensorDone
		if err := display.Flush(context.Background()); err != nil {
			slog.Error("Failed to flush display state", "error", err)
		}
	}()

	return runServer(ctx, cfg, display, st, metrics)
}

func initDB(cfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func newAltimeter(cfg *config.Config, face *raster.Face) (*instrument.Altimeter, error) {
	alt, err := instrument.New(instrument.Options{
		AltitudeUnits: baro.AltitudeUnit(cfg.Altimeter.AltitudeUnits),
		PressureUnits: baro.PressureUnit(cfg.Altimeter.PressureUnits),
		Font:          face,
		Padding:       cfg.Gauge.Padding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build altimeter: %w", err)
	}
	alt.SetKollsman(float64(cfg.Altimeter.Kollsman))
	return alt, nil
}

func newSource(cfg *config.Config) (sensor.Source, func(), error) {
	sc := cfg.Sensor
	switch sc.Provider {
	case config.SensorReplay:
		r, err := sensor.OpenReplay(sc.ReplayFile, sensor.WithPacing(sc.Pacing))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sensor recording: %w", err)
		}
		slog.Info("Sensor: replaying recording", "path", sc.ReplayFile, "paced", sc.Pacing)
		return r, func() { r.Close() }, nil
	default:
		p := sensor.DefaultProfile()
		p.StartAltitude = float64(sc.Synthetic.StartAltitude)
		p.Interval = time.Duration(sc.Synthetic.Interval)
		p.Ripple = float64(sc.Synthetic.Ripple)
		p.Loop = sc.Synthetic.Loop
		slog.Info("Sensor: synthetic profile", "start_m", p.StartAltitude, "duration", p.Duration(), "loop", p.Loop)
		return sensor.NewSynthetic(p, sc.Pacing), func() {}, nil
	}
}

func runServer(ctx context.Context, cfg *config.Config, display *api.Display, st store.Store, metrics *api.Metrics) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address, api.Handlers{
		Instrument: api.NewInstrumentHandler(display, cfg),
		Stream:     api.NewStreamHandler(display, time.Duration(cfg.Server.StreamInterval)),
		Wheel:      api.NewWheelHandler(display, time.Duration(cfg.Wheel.FrameInterval)),
		Sessions:   api.NewSessionsHandler(st),
		Metrics:    metrics,
	}, shutdownFunc)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
