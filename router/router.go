package router

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"playlister/db"
	"playlister/handlers"
	"playlister/middleware"
)

// Options, uygulamayı kurarken gereken bağımlılıklardır.
type Options struct {
	Store db.Store
	Log   *zap.Logger

	// RateLimitMax 0 ise rate limit devre dışıdır.
	RateLimitMax    int
	RateLimitWindow time.Duration
	// LimiterStorage nil ise limiter bellek içi depolama kullanır.
	LimiterStorage fiber.Storage
}

// Route, tek bir (method, path) -> handler eşlemesidir.
type Route struct {
	Method   string
	Path     string
	Handlers []fiber.Handler
}

// resourceRoutes, bir kaynağın koleksiyon ve öğe yollarını üretir.
func resourceRoutes(path string, r handlers.Resource, list ...fiber.Handler) []Route {
	item := path + "/:id"
	return []Route{
		{Method: fiber.MethodGet, Path: path, Handlers: append(list, r.List)},
		{Method: fiber.MethodPost, Path: path, Handlers: []fiber.Handler{r.Create}},
		{Method: fiber.MethodGet, Path: item, Handlers: []fiber.Handler{r.Get}},
		{Method: fiber.MethodPut, Path: item, Handlers: []fiber.Handler{r.Update}},
		{Method: fiber.MethodPatch, Path: item, Handlers: []fiber.Handler{r.Update}},
		{Method: fiber.MethodDelete, Path: item, Handlers: []fiber.Handler{r.Delete}},
	}
}

// Routes, /api altındaki tüm kaynak yollarını döner.
func Routes(store db.Store, log *zap.Logger) []Route {
	playlists := handlers.NewPlaylistHandler(store, log)
	songs := handlers.NewSongHandler(store, log)

	var routes []Route
	routes = append(routes, resourceRoutes("/playlists", playlists)...)
	routes = append(routes, resourceRoutes("/songs", songs, middleware.ValidateSongQuery)...)
	return routes
}

// New, middleware zinciri ve yönlendirme tablosuyla fiber uygulamasını kurar.
func New(opts Options) *fiber.App {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "playlister",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(log))

	app.Get("/healthz", health(opts.Store))

	api := app.Group("/api")
	if opts.RateLimitMax > 0 {
		api.Use(middleware.RateLimit(opts.RateLimitMax, opts.RateLimitWindow, opts.LimiterStorage))
	}
	for _, r := range Routes(opts.Store, log) {
		api.Add(r.Method, r.Path, r.Handlers...)
	}

	return app
}

func health(store db.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// errorHandler, handler'lardan dönen hataları JSON olarak yazar.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Sunucu hatası."

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			log.Error("İşlenmemiş hata", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
