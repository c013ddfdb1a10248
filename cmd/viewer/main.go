package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxel4d/internal/bridge"
	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/diagnostics"
	"github.com/annel0/voxel4d/internal/engine"
	"github.com/annel0/voxel4d/internal/eventbus"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/observability"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

const component = "viewer"

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $VOXEL4D_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Каждый компонент пишет в свой файл, все закрываются одним вызовом
	lm := newLoggerManager(cfg.Log)
	logging.SetDefaultLogger(lm.Logger(component))
	defer func() {
		logging.SetDefaultLogger(nil)
		_ = lm.Close()
	}()

	logging.Info("🧊 Запуск 4D воксельного просмотрщика: мир %d⁴, срез %d³, окно физики %d³",
		cfg.World.Size, cfg.View.Size, cfg.View.WindowSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry недоступен, трассировка выключена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := newEventBus(cfg.EventBus)
	if err != nil {
		logging.Error("❌ Ошибка создания шины событий: %v", err)
		return
	}
	eventbus.Init(bus)
	logSub, err := eventbus.StartLoggingListener(ctx, bus)
	if err != nil {
		logging.Warn("Логирование событий недоступно: %v", err)
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	busMetrics := eventbus.NewMetricsExporter(bus, registry)
	busMetrics.Start(5 * time.Second)
	frameMetrics := diagnostics.NewFrameMetrics(registry)
	metricsSrv := diagnostics.StartMetricsServer(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), registry)

	// === МИР И КОНВЕЙЕР ===
	w := buildWorld(cfg.World)
	logging.Info("🌍 Мир готов: %d типов в палитре", w.Palette().Len())

	eng := engine.New(cfg, w, frameMetrics)
	eng.Physics().SetLogger(lm.Logger("physics"))

	// === МОСТ К РЕНДЕРЕРУ ===
	bridgeSrv, err := bridge.NewServer(eng.Input(), frameMetrics)
	if err != nil {
		logging.Error("❌ Ошибка создания моста: %v", err)
		return
	}
	bridgeSrv.SetLogger(lm.Logger("bridge"))
	bridgeAddr := fmt.Sprintf(":%d", cfg.Server.GetBridgePort())
	httpSrv := &http.Server{
		Addr:              bridgeAddr,
		Handler:           bridgeSrv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка HTTP сервера моста: %v", err)
			stop()
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🔌 WebSocket: ws://localhost%s/ws", bridgeAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", bridgeAddr)

	run(ctx, cfg.Loop.TickHz, eng, bridgeSrv)

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Завершение работы...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки моста: %v", err)
	}
	bridgeSrv.Close()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки метрик: %v", err)
	}
	busMetrics.Stop()
	if logSub != nil {
		logSub.Unsubscribe()
	}
	eventbus.Init(nil)
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины событий: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
	}

	logging.Debug("Логгеры: %v", lm.Components())
	logging.Info("👋 Просмотрщик остановлен")
}

// run крутит кадры с частотой tickHz до отмены ctx
func run(ctx context.Context, tickHz int, eng *engine.Engine, bridgeSrv *bridge.Server) {
	ticker := time.NewTicker(time.Second / time.Duration(tickHz))
	defer ticker.Stop()

	last := time.Now()
	reporter := diagnostics.NewReporter(diagnostics.NewProcessStats(), last)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			started := time.Now()
			snap, err := eng.Update(ctx, now, dt)
			if err != nil {
				logging.Error("❌ Ошибка кадра %d: %v", snap.Frame, err)
				continue
			}
			if err := bridgeSrv.Broadcast(snap); err != nil {
				logging.Error("❌ Ошибка рассылки кадра %d: %v", snap.Frame, err)
			}
			reporter.Frame(now, time.Since(started))
		}
	}
}

// newLoggerManager переводит уровни из конфигурации; компоненты без
// переопределения получают общие уровни
func newLoggerManager(cfg config.LogConfig) *logging.LoggerManager {
	levels := func(l config.LogLevelConfig) logging.Levels {
		return logging.Levels{Console: logging.ParseLevel(l.Console), File: logging.ParseLevel(l.File)}
	}
	overrides := make(map[string]logging.Levels, len(cfg.Components))
	for name := range cfg.Components {
		overrides[name] = levels(cfg.LevelsFor(name))
	}
	return logging.NewLoggerManager(logging.NewLogger, levels(cfg.LevelsFor("")), overrides)
}

func newEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Debug("Шина событий: in-memory")
		return eventbus.NewMemoryBus(1024), nil
	}
	logging.Info("📨 Шина событий: NATS JetStream %s (stream=%s)", cfg.URL, cfg.Stream)
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

func buildWorld(cfg config.WorldConfig) *world.World4D {
	w := world.NewWorld4D(cfg.Size)
	if cfg.Single {
		c := cfg.Size / 2
		world.Single(w, vec.Vec4{X: c, Y: c, Z: c, W: c}, world.DefaultMaterials().Stone)
		return w
	}

	gen := world.NewGenerator(cfg.Seed)
	gen.NoiseScale = cfg.NoiseScale
	gen.HeightScale = cfg.HeightScale
	started := time.Now()
	gen.Generate(w)
	logging.Debug("Генерация рельефа заняла %v", time.Since(started))
	return w
}
