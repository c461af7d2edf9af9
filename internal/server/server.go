package server

import (
	"log"

	"backend-pathtracker/internal/auth"
	"backend-pathtracker/internal/config"
	"backend-pathtracker/internal/db"
	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/stream"
	"backend-pathtracker/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Store    pathstore.Store
	Tracking *tracking.Manager
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	store := newStore(pg)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: hub,
		Store:  store,
		Tracking: tracking.NewManager(store, hub,
			tracking.WithSaveTimeout(cfg.SaveTimeout),
			tracking.WithCentered(cfg.Centered),
		),
	}

	registerRoutes(s)
	return s
}

func newStore(pg *pgxpool.Pool) pathstore.Store {
	if pg == nil {
		log.Printf("postgres unavailable, saved paths are kept in memory")
		return pathstore.NewMemoryStore()
	}
	return pathstore.NewPostgresStore(pg)
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	var trackers db.Querier
	if s.DB != nil {
		trackers = s.DB
	}
	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, trackers))
	tracking.RegisterRoutes(s.App.Group("/tracking"), s.Tracking, jwtMiddleware)
	pathstore.RegisterRoutes(s.App.Group("/paths"), s.Store, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

// Close saves recordings still in progress and releases the event hub.
func (s *Server) Close() {
	s.Tracking.Close()
	if err := s.Stream.Close(); err != nil {
		log.Printf("close event hub: %v", err)
	}
}
