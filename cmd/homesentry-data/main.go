package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"homesentry-data/internal/config"
	"homesentry-data/internal/database"
	httpapi "homesentry-data/internal/http"
	"homesentry-data/internal/logger"
	"homesentry-data/internal/mqtt"
	"homesentry-data/internal/repository"
	"homesentry-data/internal/service"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "homesentry-data")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	gate := httpapi.NewAPIKeyGate(cfg.Keys.Write, cfg.Keys.Read, cfg.Keys.Legacy)
	if gate.DevMode() {
		zlog.Warn("No API keys configured, every request is allowed")
	}

	telemetryRepo := repository.NewPostgresTelemetryRepo(db, cfg.Location, zlog)
	devicesRepo := repository.NewPostgresDevicesRepo(db, cfg.Location, zlog)
	historyRepo := repository.NewPostgresHistoryRepo(db, cfg.Location, zlog)
	adminRepo := repository.NewPostgresAdminRepo(db, cfg.Location, zlog)

	var pub *service.EventPublisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pub = service.NewEventPublisher(redisClient, cfg.Redis.Stream, zlog)
		zlog.Info("Redis stream fan-out enabled", zap.String("stream", cfg.Redis.Stream))
	}

	ingestSvc := service.NewIngestService(telemetryRepo, pub, cfg.Location, zlog)
	querySvc := service.NewQueryService(historyRepo, devicesRepo, zlog)
	adminSvc := service.NewAdminService(adminRepo, cfg.Retention, zlog)

	router := httpapi.NewRouter(zlog)
	router.RegisterAPIRoutes(
		httpapi.NewIngestHandler(ingestSvc, gate, zlog),
		httpapi.NewQueryHandler(querySvc, gate, cfg.Location, zlog),
		httpapi.NewDashboardHandler(querySvc, gate, cfg.Location, zlog),
		httpapi.NewExportHandler(querySvc, gate, cfg.Location, zlog),
		httpapi.NewAdminHandler(adminSvc, gate, zlog),
		httpapi.NewSystemHandler(querySvc, cfg.Location, cfg.Timezone, zlog),
	)

	var handler http.Handler = router
	if cfg.LogRequests {
		handler = httpapi.AccessLog(zlog, handler)
	}
	handler = httpapi.CORS(cfg.CORSOrigins, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var consumer *mqtt.Consumer
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.NewClient(&cfg.MQTT, zlog)
		if err != nil {
			zlog.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		consumer = mqtt.NewConsumer(&cfg.MQTT, mqttClient, ingestSvc, zlog)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				zlog.Error("MQTT consumer stopped", zap.Error(err))
			}
		}()
	}

	srv := service.NewServer(cfg.HTTP.Addr, handler, zlog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	zlog.Info("homesentry-data started",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("timezone", cfg.Timezone))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		zlog.Error("HTTP server failed", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	if consumer != nil {
		consumer.Stop()
		mqttClient.Disconnect()
	}
	if pub != nil {
		_ = pub.Close()
	}
	_ = db.Close()
}
