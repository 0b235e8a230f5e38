package toolgate

import (
	"log/slog"

	"github.com/viant/scy"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/notify"
	"github.com/toolgate/toolgate/tracing"
)

// Option customises the gate façade.
type Option func(s *Service)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithLogger sets the structured logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPolicyTable sets the static tool policy table.
func WithPolicyTable(table policy.Table) Option {
	return func(s *Service) { s.table = table }
}

// WithPreferenceDAO sets the user preference store.
func WithPreferenceDAO(preferences dao.Service[string, policy.UserPreference]) Option {
	return func(s *Service) { s.preferences = preferences }
}

// WithActionDAO sets the pending action store.
func WithActionDAO(actions dao.Conditional[string, action.Pending]) Option {
	return func(s *Service) { s.actions = actions }
}

// WithAuditDAO sets the audit entry store.
func WithAuditDAO(entries dao.Service[string, audit.Entry]) Option {
	return func(s *Service) { s.entries = entries }
}

// WithNotifier sets the notification sink.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithSecrets sets the secret service used to scope post-approval tools.
func WithSecrets(secrets *scy.Service) Option {
	return func(s *Service) { s.secrets = secrets }
}

// WithTools registers additional tools on both execution paths.
func WithTools(tools ...types.Tool) Option {
	return func(s *Service) { s.extraTools = append(s.extraTools, tools...) }
}

// WithUnsupportedTool structurally excludes a tool from post-approval
// execution, e.g. tools bound to a live session.
func WithUnsupportedTool(name, reason string) Option {
	return func(s *Service) { s.unsupported[name] = reason }
}

// WithoutBuiltinTools skips registration of the stock tool set.
func WithoutBuiltinTools() Option {
	return func(s *Service) { s.noBuiltins = true }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, for example OTLP, Jaeger or Zipkin. The first successful
// initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
