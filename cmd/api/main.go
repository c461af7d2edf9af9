package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-pathtracker/internal/config"
	"backend-pathtracker/internal/db"
	"backend-pathtracker/internal/ingest"
	"backend-pathtracker/internal/server"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	connectMQTT     func(config.Config) (mqtt.Client, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, Resources, <-chan os.Signal, ListenFunc) error
}

// Resources are the external connections the API runs on. Any of them may
// be nil.
type Resources struct {
	Config   config.Config
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	MQTT     mqtt.Client
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		connectMQTT:     db.ConnectMQTT,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	res := Resources{Config: cfg}

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
	}
	res.Postgres = pg

	res.Redis = deps.connectRedis(cfg)

	mq, err := deps.connectMQTT(cfg)
	if err != nil {
		log.Printf("mqtt connection failed: %v", err)
	}
	res.MQTT = mq

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), res, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and MQTT ingest and waits for termination
// signals. Recordings still in progress are saved on the way out.
func Run(ctx context.Context, res Resources, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(res.Config, res.Postgres, res.Redis)
	defer closeResources(res)
	defer srv.Close()

	if res.MQTT != nil {
		sub := ingest.NewSubscriber(res.MQTT, srv.Tracking)
		if err := sub.Start(); err != nil {
			log.Printf("mqtt subscribe failed: %v", err)
		} else {
			defer func() {
				if err := sub.Stop(); err != nil {
					log.Printf("mqtt unsubscribe failed: %v", err)
				}
			}()
		}
	}

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, res.Config.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return shutdownFn(srv.App, shutdownCtx)
}

func closeResources(res Resources) {
	if res.MQTT != nil {
		res.MQTT.Disconnect(250)
	}
	if res.Postgres != nil {
		res.Postgres.Close()
	}
	if res.Redis != nil {
		_ = res.Redis.Close()
	}
}
