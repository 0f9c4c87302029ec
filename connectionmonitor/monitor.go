package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures the health check loop.
//
// Fields:
// - HealthCheckInterval: interval between connection health checks.
// - ReconnectTimeout: wait between reconnection attempts.
// - MaxReconnectAttempts: maximum number of reconnection attempts per failed check.
type Options struct {
	HealthCheckInterval  time.Duration
	ReconnectTimeout     time.Duration
	MaxReconnectAttempts int
}

// DefaultOptions returns the options used for node connections.
func DefaultOptions() Options {
	return Options{
		HealthCheckInterval:  30 * time.Second,
		ReconnectTimeout:     5 * time.Second,
		MaxReconnectAttempts: 3,
	}
}

// ConnectionMonitor represents connection state monitoring interface
type ConnectionMonitor interface {
	// Start starts connection monitoring
	Start(ctx context.Context) error
	// Stop stops connection monitoring
	Stop()
}

// BlockchainClient represents blockchain client interface
type BlockchainClient interface {
	// CheckConnection checks if connection is alive
	CheckConnection(ctx context.Context) error
	// Reconnect attempts to reconnect to blockchain node
	Reconnect(ctx context.Context) error
}

type connectionMonitor struct {
	client       BlockchainClient
	logger       *logrus.Logger
	name         string
	options      Options
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.Mutex
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the blockchain client to monitor.
// - logger: the logger for logging purposes.
// - name: the name of the monitored node, used in logs.
// - options: the health check options; zero fields fall back to DefaultOptions.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(client BlockchainClient, logger *logrus.Logger, name string, options Options) ConnectionMonitor {
	defaults := DefaultOptions()
	if options.HealthCheckInterval <= 0 {
		options.HealthCheckInterval = defaults.HealthCheckInterval
	}
	if options.ReconnectTimeout <= 0 {
		options.ReconnectTimeout = defaults.ReconnectTimeout
	}
	if options.MaxReconnectAttempts <= 0 {
		options.MaxReconnectAttempts = defaults.MaxReconnectAttempts
	}

	return &connectionMonitor{
		client:  client,
		logger:  logger,
		name:    name,
		options: options,
	}
}

// Start starts connection monitoring in a background goroutine.
//
// Parameters:
// - ctx: the context bounding the monitor's lifetime.
//
// Returns:
// - error: an error if the connection monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if m.isMonitoring {
		return errors.Errorf("connection monitor is already running for %s", m.name)
	}
	m.isMonitoring = true
	m.stopChan = make(chan struct{})

	go m.monitorConnection(ctx, m.stopChan)
	return nil
}

// Stop stops connection monitoring. It is safe to call more than once.
func (m *connectionMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection checks the connection on every tick until stopped.
func (m *connectionMonitor) monitorConnection(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(m.options.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("node", m.name).Debug("Connection monitoring stopped due to context cancellation")
			return

		case <-stop:
			m.logger.WithField("node", m.name).Debug("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.checkAndReconnect(ctx, stop); err != nil {
				m.logger.WithFields(logrus.Fields{
					"node":  m.name,
					"error": err,
				}).Error("Failed to check or reconnect")
			}
		}
	}
}

// checkAndReconnect checks the connection state and attempts to reconnect if needed.
//
// Parameters:
// - ctx: the context for managing the request.
// - stop: the channel closed by Stop.
//
// Returns:
// - error: an error if every reconnection attempt fails.
func (m *connectionMonitor) checkAndReconnect(ctx context.Context, stop <-chan struct{}) error {
	err := m.client.CheckConnection(ctx)
	if err == nil {
		m.logger.WithField("node", m.name).Debug("Ping successful")
		return nil
	}

	m.logger.WithFields(logrus.Fields{
		"node":  m.name,
		"error": err,
	}).Warn("Connection check failed, attempting to reconnect")

	for attempt := 1; attempt <= m.options.MaxReconnectAttempts; attempt++ {
		err := m.client.Reconnect(ctx)
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"node":    m.name,
				"attempt": attempt,
			}).Info("Client successfully reconnected")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"node":    m.name,
			"attempt": attempt,
			"error":   err,
		}).Error("Reconnection attempt failed")

		if attempt == m.options.MaxReconnectAttempts {
			return errors.Wrapf(err, "failed to reconnect to %s", m.name)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-time.After(m.options.ReconnectTimeout):
		}
	}

	return nil
}
