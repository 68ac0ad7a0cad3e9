// Command server runs the AssetLedger HTTP API: authentication, asset
// lifecycle, internal loans, external rentals, maintenance, billing,
// sensor ingestion, and notifications, per SPEC_FULL.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/assetledger/backend/internal/audit"
	"github.com/assetledger/backend/internal/auth"
	"github.com/assetledger/backend/internal/billing"
	"github.com/assetledger/backend/internal/config"
	"github.com/assetledger/backend/internal/database"
	"github.com/assetledger/backend/internal/database/migrations"
	"github.com/assetledger/backend/internal/httpapi"
	"github.com/assetledger/backend/internal/lifecycle"
	"github.com/assetledger/backend/internal/logging"
	"github.com/assetledger/backend/internal/metrics"
	"github.com/assetledger/backend/internal/notify"
	"github.com/assetledger/backend/internal/rbac"
	"github.com/assetledger/backend/internal/scheduler"
	"github.com/assetledger/backend/internal/sensors"
	"github.com/assetledger/backend/internal/sysstatus"
	"github.com/assetledger/backend/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New("assetledger-api", cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.WithFields(nil).WithError(err).Fatal("connect to database")
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := migrations.Apply(db.DB); err != nil {
			log.WithFields(nil).WithError(err).Fatal("apply migrations")
		}
	}

	assetRepo := database.NewAssetRepo(db)
	lookupRepo := database.NewLookupRepo(db)
	auditRepo := database.NewAuditRepo(db)
	loanRepo := database.NewLoanRepo(db)
	rentalRepo := database.NewRentalRepo(db)
	workOrderRepo := database.NewWorkOrderRepo(db)
	approvalRepo := database.NewApprovalRepo(db)
	timesheetRepo := database.NewTimesheetRepo(db)
	billingRepo := database.NewBillingRepo(db)
	maintenanceRepo := database.NewMaintenanceRepo(db)
	sensorRepo := database.NewSensorRepo(db)
	notificationRepo := database.NewNotificationRepo(db)
	userRepo := database.NewUserRepo(db)

	var permCache rbac.PermissionCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		permCache = rbac.NewRedisCache(redisClient, time.Duration(cfg.Redis.TTLSecs)*time.Second)
	}
	resolver := rbac.NewResolver(userRepo, permCache)

	matrix, err := rbac.LoadMatrix(cfg.Permissions.MatrixFile)
	if err != nil {
		log.WithFields(nil).WithError(err).Fatal("load permission matrix")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration())
	sessions := auth.NewSessionService(userRepo, resolver, tokens)

	machine := lifecycle.NewMachine(assetRepo)

	hub := notify.NewHub(log)
	notifyService := notify.NewService(notificationRepo, hub)

	loanService := workflow.NewLoanService(loanRepo, assetRepo, machine, notifyService)
	rentalService := workflow.NewRentalService(rentalRepo, assetRepo, lookupRepo, machine)
	workOrderService := workflow.NewWorkOrderService(workOrderRepo)
	conversionService := workflow.NewConversionService(assetRepo, machine)
	approvalService := workflow.NewApprovalService(approvalRepo)

	timesheetService := billing.NewTimesheetService(timesheetRepo, timesheetRepo)
	billingService := billing.NewBillingPeriodService(billingRepo, billingRepo, cfg.Billing.InvoiceDueDays)

	sensorIngest := sensors.NewIngestService(sensorRepo)
	sensorAlerts := sensors.NewAlertService(sensorRepo)

	m := metrics.New()
	status := sysstatus.NewReporter(db)

	var zapLog *zap.Logger
	if cfg.Logging.Format == "json" {
		zapLog, err = zap.NewProduction()
	} else {
		zapLog, err = zap.NewDevelopment()
	}
	if err != nil {
		log.WithFields(nil).WithError(err).Fatal("build audit logger")
	}
	defer zapLog.Sync()
	auditor := audit.NewRecorder(auditRepo, zapLog)

	sched := scheduler.New(log)
	overdueLoans := scheduler.OverdueLoansJob(loanRepo, loanService)
	overdueLoans.Cron = "0 " + cfg.Scheduler.OverdueLoansCron
	if err := sched.Register(overdueLoans); err != nil {
		log.WithFields(nil).WithError(err).Fatal("register overdue loans job")
	}
	if err := sched.Register(scheduler.OverdueRentalsJob("0 0 */2 * * *", rentalRepo, rentalService)); err != nil {
		log.WithFields(nil).WithError(err).Fatal("register overdue rentals job")
	}
	upcomingMaintenance := scheduler.UpcomingMaintenanceJob(maintenanceRepo, notifyService)
	upcomingMaintenance.Cron = "0 " + cfg.Scheduler.UpcomingMaintenanceCron
	if err := sched.Register(upcomingMaintenance); err != nil {
		log.WithFields(nil).WithError(err).Fatal("register upcoming maintenance job")
	}
	sched.Start()
	defer sched.Stop()

	server := httpapi.NewServer(
		log, m, status, auditor,
		sessions, tokens,
		assetRepo, lookupRepo, auditRepo,
		loanService, loanRepo,
		rentalService, rentalRepo,
		workOrderService, workOrderRepo,
		conversionService,
		approvalService, approvalRepo,
		timesheetService, timesheetRepo,
		billingService, billingRepo,
		maintenanceRepo,
		sensorIngest, sensorAlerts,
		notifyService, hub,
		resolver, matrix,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{"addr": httpServer.Addr}).Info("http server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithFields(nil).WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.WithFields(nil).Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithFields(nil).WithError(err).Error("graceful shutdown failed")
	}
}
