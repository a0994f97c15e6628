package config

// ConfigFileName is the companion config file inside the config directory.
// The setup installer looks for it under this exact name.
const ConfigFileName = "octoeverywhere.toml"

// Config sections.
const (
	ServerSection = "server"
	RelaySection  = "relay"
	AppSection    = "app"
)

// Keys in the server section. The printer identity lives here for hosts
// that have no separate secrets store.
const (
	PrinterIDKey  = "printer_id"
	PrivateKeyKey = "private_key"
)

// Keys in the relay section.
const (
	RelayFrontEndPortKey = "frontend_port"
)

// Keys in the app section.
const (
	LogLevelKey          = "log_level"
	HeartbeatIntervalKey = "heartbeat_interval"
	MetricsAddrKey       = "metrics_addr"
)

// Defaults. The relay frontend is assumed to answer on port 80 unless
// configured otherwise.
const (
	DefaultRelayFrontEndPort = 80
	DefaultLogLevel          = "info"
	DefaultHeartbeatInterval = "@every 5m"
	DefaultMetricsAddr       = "127.0.0.1:9090"
)
