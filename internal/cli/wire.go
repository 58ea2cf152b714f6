package cli

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/provider"
	"github.com/devcgo/devc/internal/provider/docker"
	"github.com/devcgo/devc/internal/settings"
	"github.com/devcgo/devc/internal/telemetry"
)

// Session holds all wired components for one command invocation.
type Session struct {
	Settings *settings.Settings
	Logger   *zap.Logger
	Events   *events.Bus
	Config   *config.ResolvedConfig
	Provider provider.Provider
}

// Close shuts down session components.
func (s *Session) Close() error {
	if s.Events != nil {
		if err := s.Events.Close(); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		_ = s.Logger.Sync()
	}
	return nil
}

// newSession assembles settings, logging, the event bus, the resolved
// configuration, and the provider for one command run.
func (a *App) newSession(overrides config.Overrides) (*Session, error) {
	workspace, err := filepath.Abs(a.workspaceFolder)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace folder: %w", err)
	}

	sett, err := settings.Load(workspace)
	if err != nil {
		return nil, err
	}

	logger, err := a.buildLogger(sett)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	sink := telemetry.NewEventLogger(logger)
	bus.Subscribe(sink.Emit)

	source := config.WorkspaceSource(workspace)
	if a.configFile != "" {
		source = config.FileSource(a.configFile)
	}
	if overrides.WorkspaceFolder == "" && a.workspaceOverridden() {
		overrides.WorkspaceFolder = workspace
	}
	cfg, err := config.Resolve(source, overrides)
	if err != nil {
		return nil, err
	}

	prov, err := a.buildProvider(sett, bus)
	if err != nil {
		return nil, err
	}

	return &Session{
		Settings: sett,
		Logger:   logger,
		Events:   bus,
		Config:   cfg,
		Provider: prov,
	}, nil
}

// buildLogger applies flag values over settings-file values.
func (a *App) buildLogger(sett *settings.Settings) (*zap.Logger, error) {
	formatName := sett.Log.Format
	if a.logFormat != "" {
		formatName = a.logFormat
	}
	format, err := telemetry.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	verbosity := sett.Log.Verbosity
	if a.verbosity > 0 {
		verbosity = a.verbosity
	}

	return telemetry.NewLogger(telemetry.Options{
		Verbosity: verbosity,
		Format:    format,
	}), nil
}

// buildProvider selects the engine: flag over settings file, auto-detect
// when neither names one.
func (a *App) buildProvider(sett *settings.Settings, bus *events.Bus) (provider.Provider, error) {
	if a.providerOverride != nil {
		return a.providerOverride, nil
	}

	kindName := sett.Engine.Kind
	if a.engine != "" {
		kindName = a.engine
	}

	var kind provider.Kind
	switch kindName {
	case "", "auto":
		detected, err := provider.DetectEngine()
		if err != nil {
			return nil, err
		}
		kind = detected
	case "docker":
		kind = provider.KindDocker
	case "podman":
		kind = provider.KindPodman
	default:
		return nil, fmt.Errorf("unknown engine %q (expected docker or podman)", kindName)
	}

	command := sett.Engine.Command
	if a.engineCommand != "" {
		command = a.engineCommand
	}

	return docker.New(docker.Options{
		Kind:    kind,
		Command: command,
		Events:  bus,
	}), nil
}
