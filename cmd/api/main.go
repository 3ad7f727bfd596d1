package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	appgst "github.com/jhoicas/gst-billing-api/internal/application/gst"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
	infragst "github.com/jhoicas/gst-billing-api/internal/infrastructure/gst"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/hsnseed"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/ledger"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/lock"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/memstore"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/gst-billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/whatsapp"
	httpRouter "github.com/jhoicas/gst-billing-api/internal/interfaces/http"
	"github.com/jhoicas/gst-billing-api/pkg/config"
	"github.com/jhoicas/gst-billing-api/pkg/logger"
)

// stores colecciones persistidas; cada una cumple repositorio, purga y estimación de tamaño.
type stores struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	invoices  repository.InvoiceRepository
	history   repository.InvoiceHistoryRepository
	rates     repository.HSNRateRepository
}

func loadRates(path string) ([]entity.HSNRate, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return hsnseed.Parse(f, hsnseed.EncodingUTF8)
}

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var st stores
	switch cfg.DB.Driver {
	case "memory":
		rates, err := loadRates(cfg.Tax.RatesCSV)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.Tax.RatesCSV).Msg("tarifas HSN")
		}
		st = stores{
			customers: memstore.NewCustomers(),
			products:  memstore.NewProducts(),
			invoices:  memstore.NewInvoices(),
			history:   memstore.NewInvoiceHistory(),
			rates:     memstore.NewHSNRates(rates...),
		}
		log.Warn().Int("hsn_rates", len(rates)).Msg("DB_DRIVER=memory: los datos no sobreviven al reinicio")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		st = stores{
			customers: postgres.NewCustomerRepository(pool),
			products:  postgres.NewProductRepository(pool),
			invoices:  postgres.NewInvoiceRepository(pool),
			history:   postgres.NewInvoiceHistoryRepository(pool),
			rates:     postgres.NewHSNRateRepository(pool),
		}
	}

	// Redis opcional: lock distribuido por número de factura y cache de GSTIN.
	var rdb *redis.Client
	var locker billing.InvoiceLocker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		locker = lock.NewRedisLocker(rdb, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, log.Component("lock"))
	}

	m := metrics.New()

	if err := os.MkdirAll(cfg.Storage.InvoicesDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Storage.InvoicesDir).Msg("crear directorio de facturas")
	}

	book := ledger.NewWriter(cfg.Storage.LedgerPath, cfg.Storage.LedgerSheet, log.Component("ledger"), m)
	book.Start()
	defer book.Close()

	wa := whatsapp.NewClient(cfg.WhatsApp, log.Component("whatsapp"))
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		// Un fallo deja el cliente en Failed; /send responde 503.
		_ = wa.Init(initCtx)
	}()
	defer wa.Close()

	quota := billing.NewQuotaGuard([]billing.SizeSource{
		{Name: billing.CollectionInvoice, Estimator: st.invoices},
		{Name: billing.CollectionInvoiceHistory, Estimator: st.history},
		{Name: billing.CollectionProduct, Estimator: st.products},
		{Name: billing.CollectionCustomer, Estimator: st.customers},
	}, cfg.Storage.MaxMB, cfg.Storage.PurgeDays, m)

	upsertUC := billing.NewUpsertInvoiceUseCase(billing.UpsertDeps{
		Customers: st.customers,
		Products:  st.products,
		Invoices:  st.invoices,
		History:   st.history,
		Rates:     st.rates,
		Quota:     quota,
		Renderer:  infrapdf.NewInvoiceRenderer(cfg.Storage.InvoicesDir, cfg.Shop, log.Component("pdf")),
		Ledger:    book,
		Locker:    locker,
		Metrics:   m,
	}, tax.MissPolicy(cfg.Tax.MissingHSNPolicy), log.Component("billing"))

	purgeUC := billing.NewPurgeUseCase(map[string]billing.Deleter{
		billing.CollectionInvoice:        st.invoices,
		billing.CollectionInvoiceHistory: st.history,
		billing.CollectionProduct:        st.products,
		billing.CollectionCustomer:       st.customers,
	}, cfg.Storage.PurgeDays, log.Component("purge"))

	gstClient := infragst.NewCachedClient(
		infragst.NewClient(cfg.GST.APIURL, cfg.GST.APIKey),
		rdb,
		time.Duration(cfg.GST.CacheTTLMinutes)*time.Minute,
		log.Component("gst"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "GST Billing API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		state, _ := wa.State()
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "whatsapp": state.String()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		UpsertInvoice: upsertUC,
		SendInvoice:   billing.NewSendInvoiceUseCase(wa, cfg.Storage.InvoicesDir, log.Component("send")),
		Purge:         purgeUC,
		History:       billing.NewHistoryUseCase(st.history),
		GSTLookup:     appgst.NewLookupUseCase(gstClient, log.Component("gst")),
		InvoicesDir:   cfg.Storage.InvoicesDir,
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
