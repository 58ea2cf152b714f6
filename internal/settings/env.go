package settings

import "os"

// envOverrides maps environment variables to settings field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Settings, string)
}{
	{
		envVar: "DEVC_ENGINE",
		apply: func(s *Settings, v string) {
			s.Engine.Kind = v
		},
	},
	{
		envVar: "DEVC_ENGINE_COMMAND",
		apply: func(s *Settings, v string) {
			s.Engine.Command = v
		},
	},
	{
		envVar: "DEVC_LOG_FORMAT",
		apply: func(s *Settings, v string) {
			s.Log.Format = v
		},
	},
}

// applyEnvOverrides modifies settings in place with environment values.
func applyEnvOverrides(s *Settings) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(s, val)
		}
	}
}
