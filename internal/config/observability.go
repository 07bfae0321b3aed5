package config

// TracingConfig holds optional OTLP trace export configuration.
//
// When AgentHost is empty, tracing stays disabled. When set, spans from the
// Genkit tracer provider are exported over OTLP HTTP to a local collector or
// agent (e.g. localhost:4318), which handles authentication and forwarding.
type TracingConfig struct {
	// AgentHost is the OTLP HTTP endpoint (empty = tracing disabled)
	AgentHost string `mapstructure:"agent_host" json:"agent_host"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the reported service name (default: policyrag)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}
