package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colabdraw/core/config"
	"colabdraw/core/database"
	"colabdraw/core/loader"
	"colabdraw/core/logger"
	"colabdraw/core/middleware/auth"
	"colabdraw/core/middleware/rayid"
	"colabdraw/core/storage"

	"colabdraw/feature/assets"
	"colabdraw/feature/integrity"
	"colabdraw/feature/scene"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scene sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (scene routes stay disabled without it)
		var db *gorm.DB
		var store database.DocumentStore
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Database connection failed, scene persistence disabled", zap.Error(err))
		} else {
			db = conn
			gormStore := database.NewGormStore(db, cfg.Scene.Table)
			if cfg.Database.AutoMigrate {
				if err := gormStore.Migrate(cmd.Context()); err != nil {
					logg.Fatal("Failed to migrate scene table", zap.Error(err))
				}
			}
			store = gormStore
			logg.Info("Connected to scene database",
				zap.String("driver", cfg.Database.Driver),
				zap.String("table", gormStore.Table()),
			)
		}

		// 4. Initialize Storage
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		blobs := storage.NewBlobs(client, cfg.Storage.Bucket, time.Duration(cfg.Storage.PresignSeconds)*time.Second)
		logg.Info("Asset storage configured",
			zap.String("endpoint", cfg.Storage.Endpoint),
			zap.String("bucket", blobs.Bucket()),
		)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             32 * 1024 * 1024,
			Immutable:             true,
		})

		// 6. Register Features
		mgr := loader.NewManager()
		if store != nil {
			mgr.Register(scene.NewFeature(store, logg))
		}
		mgr.Register(assets.NewFeature(blobs, cfg.Assets, logg))
		mgr.Register(integrity.NewFeature(client, cfg.Storage, db, cfg.Scene.Table, logg))

		// Middleware: RayID first so everything after it is traceable.
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("SERVER_API_KEY is empty, the API is unauthenticated")
		}

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(ctx)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
