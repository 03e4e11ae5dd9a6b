package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vaccine-reminder/internal/bot"
	"vaccine-reminder/internal/config"
	"vaccine-reminder/internal/logging"
	"vaccine-reminder/internal/notify"
	"vaccine-reminder/internal/repository"
	"vaccine-reminder/internal/service"
)

const jobTimeout = 2 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("vaccine reminder stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	store := repository.NewStore(db)
	clock := service.SystemClock(cfg.Location)

	users := service.NewUserService(store, logger)
	catalog := service.NewCatalogService(store, logger)
	reminders := service.NewReminderService(store, clock, cfg.LeadDays, logger)
	schedule := service.NewScheduleService(store, reminders, clock, cfg.DueSoonDays, logger)
	children := service.NewChildService(store, schedule, clock, logger)
	reports := service.NewReportService(schedule, clock)

	if cfg.SeedCatalog {
		if _, err := catalog.Seed(ctx, service.DefaultCatalog); err != nil {
			return err
		}
	}

	telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
		Users:     users,
		Children:  children,
		Schedule:  schedule,
		Reminders: reminders,
		Catalog:   catalog,
		Reports:   reports,
	}, clock, logger)
	if err != nil {
		return err
	}

	notifiers := []service.Notifier{telegramBot}
	if cfg.SMTP.Enabled() {
		notifiers = append(notifiers, notify.NewSMTPNotifier(cfg.SMTP, logger))
		logger.Info("email reminders enabled", zap.String("host", cfg.SMTP.Host))
	}
	dispatcher := service.NewDispatchService(reminders, logger, notifiers...)

	scheduler := service.NewSchedulerService(cfg.Location, jobTimeout, logger)
	if _, err := scheduler.ScheduleDaily("dispatch", cfg.DispatchTime, func(ctx context.Context) error {
		if _, err := schedule.ScheduleAll(ctx); err != nil {
			return err
		}
		_, err := dispatcher.DispatchDue(ctx)
		return err
	}); err != nil {
		return err
	}
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval("report", cfg.ReportInterval, telegramBot.SendReports); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("vaccine reminder bot started",
		zap.String("dispatch_time", cfg.DispatchTime),
		zap.Duration("report_interval", cfg.ReportInterval))
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
