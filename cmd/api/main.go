package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/application/billing"
	"github.com/tu-usuario/steel-pos/internal/application/ratelimit"
	"github.com/tu-usuario/steel-pos/internal/application/serializer"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/events"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/metrics"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/monitoring"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/sqlite"
	httpRouter "github.com/tu-usuario/steel-pos/internal/interfaces/http"
	"github.com/tu-usuario/steel-pos/pkg/config"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db", cfg.DB.Path).
		Msg("iniciando aplicación")

	db, err := sqlite.Open(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("apertura de la base de datos")
	}
	defer db.Close()
	if err := sqlite.ApplySchema(db); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	productRepo := sqlite.NewProductRepository(db)
	customerRepo := sqlite.NewCustomerRepository(db)
	invoiceRepo := sqlite.NewInvoiceRepository(db)
	txRunner := sqlite.NewTxRunner(db)

	maxValue, err := decimal.NewFromString(cfg.Engine.MaxInvoiceValue)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Engine.MaxInvoiceValue).Msg("ENGINE_MAX_INVOICE_VALUE inválido")
	}

	limiter := ratelimit.New(cfg.Engine.RateLimit, cfg.Engine.RateWindow)
	validator := billing.NewValidator(billing.ValidatorConfig{
		MaxItems:        cfg.Engine.MaxItems,
		MaxInvoiceValue: maxValue,
		NotesMaxLength:  cfg.Engine.NotesMaxLength,
		MaxNameLength:   cfg.Engine.MaxNameLength,
	}, log)
	queue := serializer.New(serializer.Config{
		QueueSize:        cfg.Engine.QueueSize,
		AdmissionTimeout: cfg.Engine.AdmissionTimeout,
		InterOpDelay:     cfg.Engine.InterOpDelay,
	}, log, metrics.QueueDepth)
	writer := billing.NewWriter(txRunner, billing.WriterConfig{
		BillPrefix:   cfg.Engine.BillPrefix,
		TxAttempts:   cfg.Engine.TxAttempts,
		TxBackoff:    cfg.Engine.TxBackoff,
		BillAttempts: cfg.Engine.BillAttempts,
	}, log)

	bus := events.NewBus(log)
	bus.Subscribe(events.NewLogSubscriber(log))
	hub := events.NewHub(log)
	bus.Subscribe(hub)

	createInvoiceUC := billing.NewCreateInvoiceUseCase(
		limiter, validator, queue, writer,
		customerRepo, productRepo, invoiceRepo,
		bus, log,
	)
	catalogUC := billing.NewCatalogUseCase(productRepo, customerRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateInvoice: createInvoiceUC,
		Catalog:       catalogUC,
	})

	monitor := monitoring.NewServer(db, hub, cfg.Monitor.Addr(), log)
	go func() {
		if err := monitor.Start(); err != nil {
			log.Error().Err(err).Msg("listener de monitoreo finalizado")
		}
	}()

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
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
	if err := monitor.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del monitoreo")
	}

	// El serializador se cierra al final: drena las operaciones ya encoladas
	// antes de soltar el handle de la base.
	queue.Close()
	hub.Close()

	log.Info().Msg("aplicación detenida")
}
