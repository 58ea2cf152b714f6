package settings

const (
	DefaultEngineKind = "auto"
	DefaultLogFormat  = "auto"
)

// Default returns settings with all default values applied.
func Default() *Settings {
	return &Settings{
		Engine: EngineConfig{
			Kind: DefaultEngineKind,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
		},
	}
}
