package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Mayorista-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Mayorista-api/internal/interfaces/http"
	"github.com/jhoicas/Mayorista-api/pkg/config"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		documentSvc *document.Service
		waybillUC   *document.WaybillUseCase
	)
	pdfGenerator := infrapdf.NewWaybillGenerator()

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		if err := store.SeedDemo(ctx, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("carga de datos de demostración")
		}
		documentSvc = document.NewService(store, store.Documents(), store.Lines(), store.Stock(), store.Products(), log)
		waybillUC = document.NewWaybillUseCase(documentSvc, store.Products(), pdfGenerator, cfg.Company.Name)
		log.Warn().Msg("almacenamiento en memoria (demo): catálogo y borradores de ejemplo, los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		docRepo := postgres.NewDocumentRepository(pool)
		lineRepo := postgres.NewDocumentLineRepository(pool)
		stockRepo := postgres.NewStockRepository(pool)
		productRepo := postgres.NewProductRepository(pool)
		txRunner := postgres.NewTxRunner(pool)

		documentSvc = document.NewService(txRunner, docRepo, lineRepo, stockRepo, productRepo, log)
		waybillUC = document.NewWaybillUseCase(documentSvc, productRepo, pdfGenerator, cfg.Company.Name)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Mayorista API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents: documentSvc,
		Waybill:   waybillUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
