package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/build"
	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/eventbus"
	"github.com/cloudcitycakeco/cakeorders/internal/logger"
	"github.com/cloudcitycakeco/cakeorders/internal/metrics"
	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
	"github.com/cloudcitycakeco/cakeorders/internal/service"
	"github.com/cloudcitycakeco/cakeorders/internal/storage"
	"github.com/cloudcitycakeco/cakeorders/internal/telemetry"
)

const (
	twilioHTTPTimeout = 15 * time.Second
	twilioRetries     = 2
)

// app is the fully wired service graph shared by the subcommands.
type app struct {
	cfg       *config.AppConfig
	logger    *slog.Logger
	db        *sql.DB
	workflow  *order.Workflow
	rules     *notification.RuleSet
	notifs    storage.NotificationStore
	metrics   *metrics.Recorder
	telemetry *telemetry.Telemetry
	events    eventbus.EventBus

	orderSvc        service.OrderService
	userSvc         service.UserService
	notificationSvc service.NotificationService

	closers []io.Closer
}

// newApp wires storage, transports, the dispatcher and the services from cfg.
// Logs go to the rotated system log, mirrored to stderr when verbose is set.
func newApp(ctx context.Context, cfg *config.AppConfig, verbose bool) (*app, error) {
	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel(), verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	a := &app{cfg: cfg, closers: []io.Closer{logCloser}}

	a.telemetry, err = telemetry.Setup(ctx, telemetry.Config{
		ServiceName: "cakeorders",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	a.logger = logger.Tee(sysLogger, a.telemetry.LogHandler())

	a.logger.Info("cakeorders starting",
		slog.String("data_dir", cfg.DataDir),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.Bool("telemetry", a.telemetry.Enabled()),
	)

	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	db, fresh, err := storage.NewSQLiteDB(a.cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	if fresh {
		a.logger.Info("created new database", "path", a.cfg.DBPath())
	}

	notifCfg, err := config.LoadNotificationConfig(a.cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("loading notification rules: %w", err)
	}
	a.workflow, err = notifCfg.Workflow()
	if err != nil {
		return fmt.Errorf("building order workflow: %w", err)
	}
	a.rules, err = notification.RulesFromConfig(notifCfg, a.workflow)
	if err != nil {
		return fmt.Errorf("building notification rules: %w", err)
	}

	// Transports stay nil interfaces when unconfigured so the dispatcher can
	// skip their rules.
	var (
		email    notification.EmailSender
		sms      notification.SMSSender
		verifier notification.PhoneVerifier
	)
	if a.cfg.EmailEnabled() {
		email = notification.NewSMTPSender(notification.SMTPConfig{
			Host:       a.cfg.SMTPHost,
			Port:       a.cfg.SMTPPort,
			Username:   a.cfg.SMTPUsername,
			Password:   a.cfg.SMTPPassword,
			FromAddr:   a.cfg.SMTPFrom,
			Encryption: a.cfg.SMTPEncryption,
		})
	}
	if a.cfg.SMSEnabled() || a.cfg.VerifyEnabled() {
		twilio := notification.NewTwilioClient(notification.TwilioConfig{
			AccountSID:       a.cfg.TwilioAccountSID,
			AuthToken:        a.cfg.TwilioAuthToken,
			FromNumber:       a.cfg.TwilioFromNumber,
			VerifyServiceSID: a.cfg.TwilioVerifyServiceSID,
			RatePerSecond:    a.cfg.TwilioRatePerSecond,
			Retries:          twilioRetries,
		}, &http.Client{Timeout: twilioHTTPTimeout})
		if a.cfg.SMSEnabled() {
			sms = twilio
		}
		if a.cfg.VerifyEnabled() {
			verifier = twilio
		}
	}
	a.logger.Info("notification transports",
		"email", email != nil, "sms", sms != nil, "phone_verification", verifier != nil,
		"rules", a.rules.Len())

	orders := storage.NewSQLiteOrderStore(db)
	users := storage.NewSQLiteUserStore(db)
	a.notifs = storage.NewSQLiteNotificationStore(db)
	a.metrics = metrics.NewRecorder()

	dispatcher, err := notification.NewDispatcher(notification.DispatcherConfig{
		Rules:          a.rules,
		Email:          email,
		SMS:            sms,
		Timeouts:       notification.ChannelTimeouts(notifCfg),
		DefaultTimeout: notifCfg.SendTimeout,
		Store:          a.notifs,
		Recorder:       a.metrics,
		Logger:         a.logger,
		Tracer:         a.telemetry.Tracer("github.com/cloudcitycakeco/cakeorders/internal/notification"),
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	a.events = eventbus.New(0, a.logger)
	a.events.Subscribe(eventbus.LogListener(a.logger))

	a.orderSvc = service.NewOrderService(service.OrderServiceConfig{
		Orders:   orders,
		Users:    users,
		Workflow: a.workflow,
		Notifier: dispatcher,
		Events:   a.events,
		Recorder: a.metrics,
		Logger:   a.logger,
	})
	a.userSvc = service.NewUserService(users, verifier, a.logger)
	a.notificationSvc = service.NewNotificationService(a.notifs, orders, a.rules, email, a.logger)
	return nil
}

// Close releases everything newApp acquired, in reverse order.
func (a *app) Close() error {
	var errs []error
	if a.events != nil {
		a.events.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flushing telemetry: %w", err))
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
