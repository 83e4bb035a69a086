package app

import (
	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	"surveyhub/internal/geo"
	"surveyhub/internal/handlers/middleware"
	"surveyhub/internal/logger"
	"surveyhub/internal/mail"
	"surveyhub/internal/repositories"
	"surveyhub/internal/services"
	"surveyhub/internal/websockets"

	geoController "surveyhub/internal/controllers/geolocations"
	notificationController "surveyhub/internal/controllers/notifications"
	orgController "surveyhub/internal/controllers/organizations"
	responseController "surveyhub/internal/controllers/responses"
	templateController "surveyhub/internal/controllers/templates"
	userController "surveyhub/internal/controllers/users"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	CacheInvalidation  *services.CacheInvalidationService

	// Repositories
	UserRepo          repositories.UserRepository
	OrganizationRepo  repositories.OrganizationRepository
	GeoLocationRepo   repositories.GeoLocationRepository
	TemplateRepo      repositories.TemplateRepository
	ResponseRepo      repositories.ResponseRepository
	EmailTemplateRepo repositories.EmailTemplateRepository

	// Side-effect adapters
	Dispatcher *mail.Dispatcher
	Geocoder   *geo.Geocoder

	// Controllers
	UserController         *userController.UserController
	OrganizationController *orgController.OrganizationController
	TemplateController     *templateController.TemplateController
	ResponseController     *responseController.ResponseController
	NotificationController *notificationController.NotificationController
	GeoLocationController  *geoController.GeoLocationController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	cacheInvalidation := services.NewCacheInvalidationService(db, eventBus)

	// Initialize repositories
	userRepo := repositories.NewUser(db)
	orgRepo := repositories.NewOrganization(db)
	geoRepo := repositories.NewGeoLocation(db)
	templateRepo := repositories.NewTemplate(db)
	responseRepo := repositories.NewResponse(db)
	emailTemplateRepo := repositories.NewEmailTemplate(db)

	// Side-effect adapters. The API transport is primary; SMTP picks up
	// delivery when the API is unavailable.
	dispatcher := mail.NewDispatcher(
		emailTemplateRepo,
		mail.NewAPITransport(config.MailAPIBaseURL, config.MailAPIKey),
		mail.NewSMTPTransport(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword),
		config.MailFrom,
	)
	geocoder := geo.NewGeocoder(config.GeocodeBaseURL, config.GeocodeAPIKey)

	// Initialize controllers with repositories and services
	middleware := middleware.New(db, eventBus, config, userRepo)
	respController := responseController.New(responseRepo, templateRepo, userRepo, transactionService, eventBus)
	usrController := userController.New(userRepo, orgRepo, geoRepo, responseRepo, respController, transactionService, dispatcher, eventBus)
	organizationController := orgController.New(orgRepo, userRepo, geoRepo, transactionService)
	tmplController := templateController.New(templateRepo, transactionService)
	notifController := notificationController.New(dispatcher, userRepo, orgRepo, emailTemplateRepo)
	geolocationController := geoController.New(geoRepo, geocoder, transactionService)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:           db,
		Config:             config,
		Middleware:         middleware,
		TransactionService: transactionService,
		CacheInvalidation:  cacheInvalidation,

		UserRepo:          userRepo,
		OrganizationRepo:  orgRepo,
		GeoLocationRepo:   geoRepo,
		TemplateRepo:      templateRepo,
		ResponseRepo:      responseRepo,
		EmailTemplateRepo: emailTemplateRepo,

		Dispatcher: dispatcher,
		Geocoder:   geocoder,

		UserController:         usrController,
		OrganizationController: organizationController,
		TemplateController:     tmplController,
		ResponseController:     respController,
		NotificationController: notifController,
		GeoLocationController:  geolocationController,

		Websocket: websocket,
		EventBus:  eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.CacheInvalidation,
		a.UserRepo,
		a.OrganizationRepo,
		a.GeoLocationRepo,
		a.TemplateRepo,
		a.ResponseRepo,
		a.EmailTemplateRepo,
		a.Dispatcher,
		a.Geocoder,
		a.UserController,
		a.OrganizationController,
		a.TemplateController,
		a.ResponseController,
		a.NotificationController,
		a.GeoLocationController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
