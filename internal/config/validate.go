package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var validLogLevels = map[string]bool{
	zerolog.LevelDebugValue: true,
	zerolog.LevelInfoValue:  true,
	zerolog.LevelWarnValue:  true,
	zerolog.LevelErrorValue: true,
	zerolog.LevelFatalValue: true,
	zerolog.LevelPanicValue: true,
}

// Validate checks the loaded config and returns warnings for values that
// were replaced with defaults. Nothing here is fatal; a companion with a
// broken config should still come up on defaults.
func (m *Manager) Validate() []string {
	var warnings []string

	logLevel := m.GetString(AppSection, LogLevelKey, DefaultLogLevel)
	if !validLogLevels[strings.ToLower(logLevel)] {
		warnings = append(warnings, fmt.Sprintf(
			"invalid log_level '%s' provided. Valid options are: info, debug, panic, error, warn, fatal. Defaulting to '%s'.",
			logLevel, DefaultLogLevel,
		))
	}

	heartbeat := m.GetString(AppSection, HeartbeatIntervalKey, DefaultHeartbeatInterval)
	if !isValidIntervalExpression(heartbeat) {
		warnings = append(warnings, fmt.Sprintf(
			"invalid schedule provided for heartbeat_interval, must be '@every <duration>', using default schedule %s", DefaultHeartbeatInterval))
	}

	port := m.GetInt(RelaySection, RelayFrontEndPortKey, DefaultRelayFrontEndPort)
	if port < 1 || port > 65535 {
		warnings = append(warnings, fmt.Sprintf(
			"invalid relay frontend_port %d, using default %d", port, DefaultRelayFrontEndPort))
	}

	return warnings
}

// LogLevel returns the configured log level, falling back to the default
// when the configured value is not a known level.
func (m *Manager) LogLevel() string {
	logLevel := strings.ToLower(m.GetString(AppSection, LogLevelKey, DefaultLogLevel))
	if !validLogLevels[logLevel] {
		return DefaultLogLevel
	}
	return logLevel
}

// HeartbeatInterval returns the configured heartbeat schedule, falling
// back to the default when the expression does not parse.
func (m *Manager) HeartbeatInterval() string {
	heartbeat := m.GetString(AppSection, HeartbeatIntervalKey, DefaultHeartbeatInterval)
	if !isValidIntervalExpression(heartbeat) {
		return DefaultHeartbeatInterval
	}
	return heartbeat
}

// RelayFrontEndPort returns the configured relay frontend port, falling
// back to the default when out of range.
func (m *Manager) RelayFrontEndPort() int {
	port := m.GetInt(RelaySection, RelayFrontEndPortKey, DefaultRelayFrontEndPort)
	if port < 1 || port > 65535 {
		return DefaultRelayFrontEndPort
	}
	return port
}

// isValidIntervalExpression accepts only the "@every <duration>" form.
// The interval scheduler cannot run positional cron schedules, so a
// 5-field expression must be rejected here rather than silently dropped
// at scheduler construction.
func isValidIntervalExpression(expr string) bool {
	if !strings.HasPrefix(expr, "@every ") {
		return false
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return false
	}
	return true
}
