package config

// DefaultClusterConfig returns the configuration used when no config.yaml is
// present: metrics disabled, a modestly sized mailbox, no nodes declared.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		Engine: EngineConfig{
			MailboxSize:         1024,
			AdminReplyTimeoutMS: 30_000,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "localhost:9090",
		},
	}
}
