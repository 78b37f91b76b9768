// Package app wires configuration, storage, domain services and the HTTP
// router into one runnable application.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
	"github.com/supportta-projects/waterpurifier-sub000/internal/database"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/handlers"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/logging"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/router"
	"github.com/supportta-projects/waterpurifier-sub000/internal/services"
	"github.com/supportta-projects/waterpurifier-sub000/internal/servicing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/staff"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Repos     *repository.Repositories
	Bus       *events.Bus
	Billing   *billing.Service
	Servicing *servicing.Service
	Scheduler *servicing.Scheduler
	Router    *gin.Engine
}

// New builds the application. The database is opened, migrated and seeded
// with the configured administrator; cron jobs are not started yet.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := logging.Setup(cfg.Logger)
	if err != nil {
		return nil, err
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	loc, err := cfg.Jobs.TimeLocation()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	gen, err := ids.NewGenerator(cfg.Jobs.SnowflakeNode)
	if err != nil {
		return nil, errors.Wrap(err, "id generator")
	}
	if err := database.SeedAdmin(ctx, db, gen, cfg.Admin); err != nil {
		return nil, err
	}

	repos := repository.New(db)
	bus := events.NewBus()

	var sms services.SMSServiceInterface
	if cfg.SMS.Enabled() {
		sms = services.NewSMSService(cfg.SMS)
	} else {
		zap.L().Warn("AFRICASTALKING_USERNAME or AFRICASTALKING_API_KEY not set, sms disabled")
	}
	var email services.EmailServiceInterface
	if cfg.SMTP.Enabled() {
		email = services.NewEmailService(cfg.SMTP)
	}
	if err := services.NewNotifier(sms, email, cfg.Company.Name).Register(bus); err != nil {
		return nil, errors.Wrap(err, "register notifier")
	}

	billingSvc := billing.NewService(repos, gen, bus, billing.Options{
		CompanyName:   cfg.Company.Name,
		PublicBaseURL: cfg.Company.PublicBaseURL,
		CountryCode:   cfg.SMS.CountryCode,
	})
	servicingSvc := servicing.NewService(repos, gen, bus)

	scheduler, err := servicing.NewScheduler(servicingSvc, sms, servicing.SchedulerConfig{
		Location:      loc,
		QuarterlyCron: cfg.Jobs.QuarterlyCron,
		ReminderCron:  cfg.Jobs.ReminderCron,
		Workers:       cfg.Jobs.NotifyWorkers,
		CompanyName:   cfg.Company.Name,
	})
	if err != nil {
		return nil, err
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration, cfg.Auth.Issuer)
	h := router.Handlers{
		Auth:      handlers.NewAuthHandler(ctx, cfg.OIDC, issuer, repos.Users),
		Customers: handlers.NewCustomerHandler(repos, gen),
		Products:  handlers.NewProductHandler(repos, gen),
		Orders:    handlers.NewOrderHandler(repos, billingSvc),
		Services:  handlers.NewServiceHandler(servicingSvc, billingSvc, loc),
		Invoices:  handlers.NewInvoiceHandler(billingSvc),
		Staff:     handlers.NewStaffHandler(staff.NewService(repos, gen)),
		Dashboard: handlers.NewDashboardHandler(repos),
		Public:    handlers.NewPublicHandler(db, billingSvc),
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Repos:     repos,
		Bus:       bus,
		Billing:   billingSvc,
		Servicing: servicingSvc,
		Scheduler: scheduler,
		Router: router.New(router.Options{
			Issuer:      issuer,
			Users:       repos.Users,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, h),
	}, nil
}

// StartJobs starts the follow-up and reminder jobs unless disabled.
func (a *Application) StartJobs() error {
	if a.Config.Jobs.DisableCronJob {
		zap.L().Info("cron jobs disabled")
		return nil
	}
	return a.Scheduler.Start()
}

// Close stops the jobs, drains pending event handlers and closes the
// database.
func (a *Application) Close() {
	a.Scheduler.Stop()
	a.Bus.Wait()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Logger.Sync()
}
