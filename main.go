package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kendall-kelly/canteen-meals-api/config"
	"github.com/kendall-kelly/canteen-meals-api/middleware"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/realtime"
	"github.com/kendall-kelly/canteen-meals-api/routes"
	"github.com/kendall-kelly/canteen-meals-api/services"
	"gorm.io/gorm"
)

// app holds the long-lived collaborators created at startup
type app struct {
	hub        *realtime.Hub
	dispatcher *services.Dispatcher
	closers    []func() error
}

func main() {
	log.Println("Starting Canteen Meals API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setupServices(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	go a.hub.Run(ctx)

	router := routes.SetupRouter(cfg, middleware.EnsureValidToken(cfg), a.hub)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	a.close()
}

// setupServices builds the engine from configuration and registers the
// service instances used by the controllers.
func setupServices(ctx context.Context, cfg *config.Config, db *gorm.DB) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cal := services.NewCalendar(loc)

	a := &app{
		hub:        realtime.NewHub(),
		dispatcher: services.NewDispatcher(cfg.NotifyTimeout),
	}

	var printer services.TicketPrinter = services.LogTicketPrinter{}
	if cfg.PrinterAddr != "" {
		printer = services.NewNetworkTicketPrinter(cfg.PrinterAddr)
		log.Printf("Printing tickets to %s", cfg.PrinterAddr)
	}

	var archive services.TicketArchive
	if cfg.AWSS3Bucket != "" {
		s3Archive, err := services.NewS3TicketArchive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		archive = s3Archive
		log.Printf("Archiving tickets to s3://%s", cfg.AWSS3Bucket)
	}

	notifiers := services.MultiNotifier{a.hub}
	if cfg.NATSURL != "" {
		nc, err := services.NewNATSNotifier(cfg.NATSURL)
		if err != nil {
			// Dashboards still get websocket events
			log.Printf("warning: NATS unavailable, order events stay local: %v", err)
		} else {
			notifiers = append(notifiers, nc)
			a.closers = append(a.closers, nc.Close)
		}
	}

	audit := services.NewAuditService(db)
	catalog := services.NewCatalogService(db, cal)
	settings := services.NewSettingsService(db, services.SettingsDefaults{
		DailyMealLimit: cfg.DefaultDailyMealLimit,
		CompanyName:    cfg.CompanyName,
	})

	orders := services.NewOrderService(db, services.OrderServiceDeps{
		Calendar:     cal,
		Catalog:      catalog,
		Identities:   services.NewIdentityService(db),
		Limiter:      services.NewDailyLimiter(cal),
		Settings:     settings,
		Printer:      printer,
		Archive:      archive,
		Notifier:     notifiers,
		Audit:        audit,
		Dispatcher:   a.dispatcher,
		PrintTimeout: cfg.PrinterTimeout,
	})

	services.SetOrderService(orders)
	services.SetOrderQueryService(services.NewOrderQueryService(db, cal))
	services.SetCatalogService(catalog)
	services.SetCustomerService(services.NewCustomerService(db))
	services.SetSettingsService(settings)
	services.SetAuditService(audit)

	return a, nil
}

// close waits for pending side effects and releases connections
func (a *app) close() {
	a.dispatcher.Wait()
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Printf("warning: shutdown: %v", err)
		}
	}
}
