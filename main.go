package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enquiry-app/config"
	"enquiry-app/controllers"
	"enquiry-app/controllers/idgen"
	"enquiry-app/database"
	"enquiry-app/middleware"
	"enquiry-app/migration"
	"enquiry-app/notification"
	"enquiry-app/routes"
	"enquiry-app/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	envFound := config.LoadConfig()

	logger, err := config.NewLogger()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	if !envFound {
		logger.Info("no .env file found, using environment")
	}

	idgen.Init(config.SnowflakeNode)

	if err := database.EnsureDatabaseExists(logger, config.DBName); err != nil {
		logger.Fatal("failed to prepare database", zap.Error(err))
	}
	db, err := database.Open(config.DBName)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if config.DBMigrate {
		if err := migration.Migrate(db); err != nil {
			logger.Fatal("failed to auto migrate", zap.Error(err))
		}
	}
	if config.DBSeed {
		if err := database.RunSeeders(db, logger); err != nil {
			logger.Fatal("failed to seed", zap.Error(err))
		}
	}

	var mailer notification.Mailer = notification.NewLogMailer(logger)
	if config.SMTPHost != "" {
		mailer = notification.NewSMTPMailer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword, config.SMTPFrom)
	}
	sinks := []notification.Sink{notification.NewLogSink(logger)}
	if len(config.ActivityMailTo) > 0 {
		sinks = append(sinks, notification.NewMailSink(mailer, config.ActivityMailTo))
	}
	dispatcher := notification.NewDispatcher(logger, 256, sinks...)
	defer dispatcher.Close()

	rollups := services.NewRollupService(db, logger, dispatcher)
	bills := services.NewBillService(db, logger, dispatcher)
	handlers := routes.Controllers{
		Leads:      controllers.NewLeadController(services.NewLeadService(db, logger, dispatcher), logger),
		Enquiries:  controllers.NewEnquiryController(services.NewEnquiryService(db, logger, dispatcher), logger),
		Items:      controllers.NewItemController(services.NewItemService(db, logger, dispatcher), logger),
		Suppliers:  controllers.NewSupplierController(services.NewCatalogService(db, logger, dispatcher), logger),
		Selections: controllers.NewSelectionController(services.NewSelectionService(db, logger, dispatcher, mailer), rollups, logger),
		Documents:  controllers.NewDocumentController(services.NewDocumentService(db, logger, dispatcher), logger),
		Shipments:  controllers.NewShipmentController(services.NewShipmentService(db, logger, dispatcher), bills, logger),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: errorHandler(logger),
	})
	app.Use(middleware.RequestID)
	config.SetupCORS(app)
	routes.SetupRoutes(app, handlers)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", config.APP_PORT), zap.String("env", config.APP_ENV))
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// errorHandler renders fiber's own errors (unknown route, body too large)
// in the response envelope.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			logger.Error("unhandled error", zap.String("request_id", middleware.RequestIDOf(ctx)), zap.Error(err))
		}
		return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
	}
}
