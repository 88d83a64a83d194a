package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/factuur-api/internal/application/auth"
	"github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain/repository"
	"github.com/jhoicas/factuur-api/internal/infrastructure/mail"
	"github.com/jhoicas/factuur-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/factuur-api/internal/infrastructure/pdf"
	"github.com/jhoicas/factuur-api/internal/infrastructure/postgres"
	"github.com/jhoicas/factuur-api/internal/infrastructure/retailer"
	"github.com/jhoicas/factuur-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/factuur-api/internal/interfaces/http"
	"github.com/jhoicas/factuur-api/pkg/clock"
	"github.com/jhoicas/factuur-api/pkg/config"
	"github.com/jhoicas/factuur-api/pkg/logger"
)

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
		Msg("iniciando aplicación")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración")
	}
	if cfg.Auth.AdminPasswordHash != "" && !auth.ValidHash(cfg.Auth.AdminPasswordHash) {
		log.Fatal().Msg("ADMIN_PASSWORD_HASH no es un hash bcrypt")
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}
	clk := clock.System{}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Persistencia: PostgreSQL si está configurado, si no en memoria (solo desarrollo).
	var dispatchRepo repository.DispatchRepository
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", postgres.RedactDSN(cfg.DB.ConnectionString())).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		pgRepo := postgres.NewDispatchRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("esquema de base de datos")
		}
		dispatchRepo = pgRepo
	} else {
		log.Warn().Msg("sin base de datos: registros de envío en memoria")
		dispatchRepo = memory.NewDispatchRepository()
	}

	retailerClient := retailer.NewClient(retailer.Config{
		BaseURL:     cfg.Retailer.BaseURL,
		AccessURL:   cfg.Retailer.AccessURL,
		Credentials: cfg.Retailer.Credentials,
		TokenTTL:    cfg.Retailer.TokenTTL(),
		Timeout:     cfg.Retailer.Timeout(),
	}, nil, clk)

	letterhead := infrapdf.Letterhead{
		Email:         cfg.Seller.Email,
		Street:        cfg.Seller.Street,
		ZipCity:       cfg.Seller.ZipCity,
		Country:       cfg.Seller.Country,
		KvKNumber:     cfg.Seller.KvKNumber,
		VATNumber:     cfg.Seller.VATNumber,
		PaymentMethod: cfg.Seller.PaymentMethod,
	}
	invoicePDF, err := infrapdf.NewInvoiceGenerator(infrapdf.DefaultTemplate(), letterhead, cfg.Assets.LogoPath())
	if err != nil {
		log.Fatal().Err(err).Msg("plantilla de factura")
	}
	reportPDF := infrapdf.NewReportGenerator(cfg.Assets.LogoPath())

	mailer, err := mail.NewGomailSender(mail.Config{
		From:     cfg.SMTP.From,
		TrackURL: cfg.Retailer.TrackURL,
		LogoPath: cfg.Assets.LogoPath(),
		Brand:    cfg.Seller.Name,
	}, mail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password), clk)
	if err != nil {
		log.Fatal().Err(err).Msg("mailer")
	}

	invoiceUC := billing.NewInvoiceUseCase(invoicePDF, clk, loc)
	dispatchUC := billing.NewDispatchUseCase(
		retailerClient, invoiceUC, mailer, dispatchRepo, reportPDF, clk,
		log.Named("dispatch"),
		billing.DispatchConfig{
			Concurrency: cfg.Schedule.Concurrency,
			ReportEmail: cfg.SMTP.ReportEmail,
			Location:    loc,
		},
	)
	authUC := auth.NewAuthUseCase(cfg.Auth.AdminPasswordHash, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute * 5, // POST /api/dispatch/run procesa el lote completo
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Static("/public", cfg.Assets.Dir)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		DispatchUC: dispatchUC,
		InvoiceUC:  invoiceUC,
		JWTSecret:  cfg.JWT.Secret,
		Clock:      clk,
		Location:   loc,
		AppName:    cfg.App.Name,
	})

	if cfg.Schedule.Enabled {
		daily, err := scheduler.NewDaily(cfg.Schedule.Hour, cfg.Schedule.Minute, loc, clk, log)
		if err != nil {
			log.Fatal().Err(err).Msg("planificador")
		}
		daily.Timeout = time.Hour
		go daily.Run(ctx, func(ctx context.Context) error {
			_, err := dispatchUC.RunDaily(ctx)
			return err
		})
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
