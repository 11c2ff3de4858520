package procman

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/progress"
	"github.com/viant/procman/runtime/table"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
	"github.com/viant/procman/service/event"
	"github.com/viant/procman/service/factory"
	"github.com/viant/procman/service/scheduler"
	"github.com/viant/procman/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithConfig sets the configuration; nil keeps DefaultConfig.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithFactory sets the process construction capability shared by all domains.
func WithFactory(f factory.Factory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// WithSelector overrides the configured scheduling policy of the named domain.
func WithSelector(domain string, selector scheduler.Selector) Option {
	return func(s *Service) {
		s.selectors[domain] = selector
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHalt sets the fatal fault handler; the default panics with the fault.
func WithHalt(halt table.HaltFunc) Option {
	return func(s *Service) {
		s.halt = halt
	}
}

// WithSnapshotDAO sets the snapshot store, taking precedence over snapshot.url.
func WithSnapshotDAO(dao dao.Service[string, snapshot.Snapshot]) Option {
	return func(s *Service) {
		s.snapshots = dao
	}
}

// WithFileSystem sets the afs service used for snapshot persistence.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithEventListener registers a handler for lifecycle events and enables publishing.
func WithEventListener(handler func(*event.Event[process.Record])) Option {
	return func(s *Service) {
		s.handler = handler
	}
}

// WithProgressListener registers a callback receiving the counters of a
// domain after every change. It runs on the caller's goroutine while the
// domain lock is held, so it must not call back into the domain.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.progressListener = listener
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter writes to os.Stdout. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.logger.Warn("failed to init tracing", "error", err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.logger.Warn("failed to init tracing", "error", err)
		}
	}
}
