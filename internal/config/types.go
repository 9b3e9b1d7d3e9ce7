package config

// ClusterConfig is the top-level configuration for a redundancy domain: the
// set of nodes the engine may place units on and defaults applied to newly
// loaded service groups.
type ClusterConfig struct {
	Nodes   []NodeConfig  `yaml:"nodes,omitempty"`
	Engine  EngineConfig  `yaml:"engine,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// NodeConfig declares a cluster node available to host service units.
type NodeConfig struct {
	Name   string `yaml:"name"`
	Member bool   `yaml:"member,omitempty"`
}

// EngineConfig tunes the event-loop dispatcher.
type EngineConfig struct {
	// MailboxSize bounds the engine's inbound event channel.
	MailboxSize int `yaml:"mailboxSize,omitempty"`

	// AdminReplyTimeoutMS bounds how long an admin invocation waits for
	// its terminal ADMIN_REPLY before the CLI gives up on it.
	AdminReplyTimeoutMS int64 `yaml:"adminReplyTimeoutMS,omitempty"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty"`
}

// RedundancyModelName is the YAML-facing spelling of a redundancy model,
// kept distinct from model.RedundancyModel so config parsing can reject
// unknown values before they reach the engine.
type RedundancyModelName string

const (
	RedundancyModelTwoN   RedundancyModelName = "2N"
	RedundancyModelNPlusM RedundancyModelName = "NPM"
	RedundancyModelNWay   RedundancyModelName = "NWAY"
)

// AdminStateName is the YAML-facing spelling of an administrative state.
type AdminStateName string

const (
	AdminStateUnlocked            AdminStateName = "UNLOCKED"
	AdminStateLocked              AdminStateName = "LOCKED"
	AdminStateLockedInstantiation AdminStateName = "LOCKED_INSTANTIATION"
	AdminStateShuttingDown        AdminStateName = "SHUTTING_DOWN"
)
