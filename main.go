package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"decoupage/api-gateway/config"
	"decoupage/api-gateway/handlers"
	"decoupage/api-gateway/internal/imagecache"
	"decoupage/api-gateway/internal/preview"
	"decoupage/api-gateway/internal/scriptstore"
	"decoupage/api-gateway/internal/transcriber"
	"decoupage/api-gateway/internal/worker"
	"decoupage/api-gateway/middleware"
)

func main() {
	config.InitLogger()

	if err := config.InitSupabase(); err != nil {
		config.Log.WithError(err).Fatal("Failed to initialize Supabase")
	}

	mediaBase := config.MediaBaseURL()

	cache, err := imagecache.New(imagecache.Options{
		Capacity: config.CacheCapacity(),
		Logger:   config.Log,
	})
	if err != nil {
		config.Log.WithError(err).Fatal("Failed to initialize image cache")
	}

	store := scriptstore.New(config.SupabaseClient, config.Log)
	generator := preview.NewGenerator(cache, mediaBase, config.Log)
	transcribe := transcriber.NewClient(config.TranscriberURL(), config.Log)

	dispatcher := worker.NewDispatcher(5, 100, config.Log)
	dispatcher.Run()

	h := handlers.NewApplicationHandler(store, cache, generator, transcribe, dispatcher, config.Log, mediaBase)

	app := fiber.New(fiber.Config{
		AppName: "decoupage-api-gateway",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Decoupage API Gateway is healthy",
		})
	})

	api := app.Group("/api")

	// Script document
	api.Get("", h.GetScript)
	api.Put("", h.UpdateScript)

	// Timecodes
	api.Post("/move", h.MoveTimecode)
	api.Post("/timecode", h.AppendTimecode)
	api.Patch("/timecode/:id", h.ClassifyTimecode)
	api.Delete("/timecode/:id", h.DeleteTimecode)
	api.Get("/image/:id", h.GetImage)

	// Scenes
	api.Post("/scenes", h.AddScene)
	api.Post("/scenes/:index/move", h.MoveScene)
	api.Delete("/scenes/:index", h.RemoveScene)

	// Export
	api.Get("/preview/pdf", h.GetPreviewPDF)
	api.Get("/preview/sheet", h.GetContactSheet)

	// Transcription
	api.Post("/transcribe", h.TranscribeMedia)
	api.Delete("/transcribe/:media", h.CancelTranscription)

	// Projects
	api.Get("/projects", h.GetProjects)
	api.Post("/projects", h.CreateProject)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		config.Log.Info("Shutting down")
		dispatcher.Stop()
		cache.Dispose()
		_ = app.Shutdown()
	}()

	addr := ":" + config.Port()
	config.Log.WithField("addr", addr).Info("Starting Decoupage API Gateway")
	if err := app.Listen(addr); err != nil {
		config.Log.WithError(err).Fatal("Server stopped")
	}
}
