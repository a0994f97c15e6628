// Package telemetry holds the crash-reporting collaborator and the host
// diagnostics that ride along with it.
package telemetry

import "github.com/rs/zerolog"

// Reporter receives top-level failures before the process exits. The
// hosted crash-reporting backend is an external collaborator; this is
// the whole surface the companion depends on.
type Reporter interface {
	// ReportException records a caught error with a human-readable message.
	ReportException(msg string, err error)
}

// LogReporter is a Reporter that writes to the process log. Used when no
// hosted backend is configured, and in dev mode where reports must not
// leave the machine.
type LogReporter struct {
	log *zerolog.Logger
}

// NewLogReporter creates a Reporter backed by the given logger.
func NewLogReporter(log *zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) ReportException(msg string, err error) {
	r.log.Error().Err(err).Msg(msg)
}
