package services

import (
	"context"
	"fmt"

	"github.com/thushan/redis-watcher/internal/adapter/health"
	"github.com/thushan/redis-watcher/internal/adapter/notify"
	"github.com/thushan/redis-watcher/internal/adapter/orchestrator"
	"github.com/thushan/redis-watcher/internal/adapter/recovery"
	"github.com/thushan/redis-watcher/internal/config"
	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/core/ports"
	"github.com/thushan/redis-watcher/internal/logger"
	"github.com/thushan/redis-watcher/pkg/container"
)

const WatchdogServiceName = "watchdog"

// WatchdogService builds the probe, notifiers and restart path from config
// and runs the watchdog's tick loop
type WatchdogService struct {
	config   *config.Config
	registry *ServiceRegistry
	logger   logger.StyledLogger
	watchdog *health.Watchdog
}

func NewWatchdogService(cfg *config.Config, registry *ServiceRegistry, logger logger.StyledLogger) *WatchdogService {
	return &WatchdogService{
		config:   cfg,
		registry: registry,
		logger:   logger,
	}
}

func (s *WatchdogService) Name() string {
	return WatchdogServiceName
}

func (s *WatchdogService) Start(ctx context.Context) error {
	events, err := s.registry.GetEvents()
	if err != nil {
		return err
	}

	gateway, err := NewNotificationGateway(s.config)
	if err != nil {
		return err
	}
	if len(gateway.Names()) == 0 {
		s.logger.Warn("No notifiers enabled, outages will only be logged")
	} else {
		s.logger.InfoWithCount("Notifiers enabled", len(gateway.Names()), "notifiers", gateway.Names())
	}

	targets := domain.NewWorkloadDescriptors(s.config.Services.Targets)
	var recoveryCallback health.RecoveryCallback = health.NoOpRecoveryCallback{}
	if len(targets) > 0 {
		recoveryCallback = health.NewRestartOnRecovery(NewRestarter(s.config, s.logger), targets)
		s.logger.InfoWithCount("Workloads restarted on recovery", len(targets), "targets", s.config.Services.Targets)
		s.checkEngineSocket()
	} else {
		s.logger.Warn("No service targets configured, recovery will not restart anything")
	}

	s.watchdog = health.NewWatchdog(health.WatchdogConfig{
		Probe:    NewProbe(s.config),
		Notifier: gateway,
		Recovery: recoveryCallback,
		Events:   events.Bus(),
		Logger:   s.logger,
		Interval: s.config.General.Interval,
	})
	return s.watchdog.Start(ctx)
}

// checkEngineSocket only warns, the engine may come up after the watcher
func (s *WatchdogService) checkEngineSocket() {
	socket := s.config.Services.Socket
	if socket == "" || container.SocketAvailable(socket) {
		return
	}
	if container.IsContainerised() {
		s.logger.Warn("Engine socket not found, is it mounted into the container?", "socket", socket)
		return
	}
	s.logger.Warn("Engine socket not found, restarts will fail until it exists", "socket", socket)
}

func (s *WatchdogService) Stop(ctx context.Context) error {
	if s.watchdog == nil {
		return nil
	}
	s.logger.Info("Stopping watchdog", "state", s.watchdog.State().String())
	return s.watchdog.Stop(ctx)
}

func (s *WatchdogService) Dependencies() []string {
	return []string{EventsServiceName}
}

func (s *WatchdogService) Watchdog() *health.Watchdog {
	return s.watchdog
}

func NewProbe(cfg *config.Config) *health.RedisProbe {
	return health.NewRedisProbe(health.RedisProbeConfig{
		Host:           cfg.Redis.Host,
		Port:           cfg.Redis.Port,
		Auth:           cfg.Redis.Auth,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		ConnectTimeout: cfg.General.ConnectTimeout,
	})
}

// NewNotificationGateway returns a gateway over the enabled notifiers, mail
// first then SMS. A gateway with none is valid.
func NewNotificationGateway(cfg *config.Config) (*notify.Gateway, error) {
	var notifiers []ports.Notifier

	if cfg.Email.Enabled {
		mail, err := notify.NewMailNotifier(notify.MailConfig{
			SMTPURL:  cfg.Email.SMTPURL,
			Username: cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPassword,
			Sender:   cfg.Email.Sender,
			Receiver: cfg.Email.Receiver,
			TLS:      cfg.Email.SMTPTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to configure mail notifier: %w", err)
		}
		notifiers = append(notifiers, mail)
	}

	if cfg.SMS.Enabled {
		notifiers = append(notifiers, notify.NewSMSNotifier(notify.SMSConfig{
			Mobile:    cfg.SMS.Mobile,
			Endpoint:  cfg.SMS.Endpoint,
			AccessKey: cfg.SMS.Key,
			Secret:    cfg.SMS.Secret,
			Algorithm: cfg.SMS.Algorithm,
		}, nil))
	}

	return notify.NewGateway(notify.DefaultNotifyTimeout, notifiers...), nil
}

func NewRestarter(cfg *config.Config, logger logger.StyledLogger) *recovery.Orchestrator {
	client := orchestrator.NewSwarmClient(orchestrator.ClientConfig{
		Socket:            cfg.Services.Socket,
		APIURL:            cfg.Services.APIURL,
		RequestTimeout:    cfg.Services.RequestTimeout,
		RequestsPerSecond: cfg.Services.RequestsPerSecond,
	})
	return recovery.NewOrchestrator(client, logger, cfg.Services.CreateMissingCounter)
}
