package config

const (
	defaultOutputSuffix = "_kilosortChanMap.mat"
	defaultLogFormat    = "console"
	defaultLogLevel     = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Output: Output{
			Suffix:    defaultOutputSuffix,
			Overwrite: true,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
