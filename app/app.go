package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"echo-vintage-ecard/app/controller"
	"echo-vintage-ecard/app/router"
	"echo-vintage-ecard/config"
	"echo-vintage-ecard/db"
	"echo-vintage-ecard/logger"
	"echo-vintage-ecard/pricing"
	"echo-vintage-ecard/repository"
	"echo-vintage-ecard/service"
)

// App is the initialised server: its HTTP handler and the background scheduler
type App struct {
	Handler   http.Handler
	Scheduler *service.Scheduler
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLevel(cfg.LogLevel)
	logger.SetOutput(os.Stdout, !cfg.IsProduction())

	// Initialize database connection
	if err := db.InitDB(cfg.ConnString()); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Image hosting: Google Drive when credentials are configured, local disk otherwise
	uploadDir := ""
	var host service.ImageHost
	if cfg.DriveCredentialsPath != "" && cfg.DriveFolderID != "" {
		driveHost, err := service.NewDriveImageHost(ctx, cfg.DriveCredentialsPath, cfg.DriveFolderID)
		if err != nil {
			return nil, err
		}
		host = driveHost
		log.Printf("✓ Images are hosted on Google Drive folder %s", cfg.DriveFolderID)
	} else {
		localHost, err := service.NewLocalImageHost(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		host = localHost
		uploadDir = localHost.Dir()
		log.Printf("✓ Images are stored locally in %s", uploadDir)
	}

	// Initialize repositories
	envelopeRepo := repository.NewEnvelopeRepository()
	stickerRepo := repository.NewStickerRepository()
	frameRepo := repository.NewPhotoFrameRepository()
	stampRepo := repository.NewStampRepository()
	musicRepo := repository.NewMusicRepository()
	userRepo := repository.NewUserRepository()
	cardRepo := repository.NewCardRepository()
	draftRepo := repository.NewDraftRepository()
	promoRepo := repository.NewPromoCodeRepository()
	legalRepo := repository.NewLegalRequestRepository()

	// Initialize services
	engine, err := pricing.NewEngine(cfg.PricingConfigPath, repository.NewPriceRepository())
	if err != nil {
		return nil, err
	}
	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom)
	messengerService := service.NewMessengerService(cfg.GraphAPIURL, cfg.FacebookPageToken)
	cardService := service.NewCardService(cardRepo, userRepo, engine, emailService, messengerService, cfg.PublicBaseURL)
	uploadService := service.NewUploadService(host, stickerRepo)
	previewService := service.NewPreviewService(envelopeRepo, stampRepo, musicRepo, frameRepo, stickerRepo, cfg.ChromePath)
	legalService := service.NewLegalService(legalRepo, emailService)

	scheduler, err := service.NewScheduler(cfg.SchedulerSpec, cardService)
	if err != nil {
		return nil, err
	}

	// Create controllers
	controllers := &router.Controllers{
		Envelope:   controller.NewEnvelopeController(envelopeRepo),
		Sticker:    controller.NewStickerController(stickerRepo, uploadService),
		PhotoFrame: controller.NewPhotoFrameController(frameRepo),
		Stamp:      controller.NewStampController(stampRepo),
		Music:      controller.NewMusicController(musicRepo),
		User:       controller.NewUserController(userRepo),
		Card:       controller.NewCardController(cardService, previewService),
		Draft:      controller.NewDraftController(draftRepo),
		Promo:      controller.NewPromoController(promoRepo),
		Legal:      controller.NewLegalController(legalService, legalRepo),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers, router.Options{AdminToken: cfg.AdminToken, UploadDir: uploadDir})

	return &App{Handler: mux, Scheduler: scheduler}, nil
}
