package provider

import (
	"context"
	"sync"

	"github.com/devcgo/devc/internal/config"
)

// MockCall records one operation invoked on the Mock provider.
type MockCall struct {
	Op   string
	Argv []string // set for Exec calls
}

// Mock provides a testable in-memory implementation of the Provider
// interface. All methods record their calls and return configurable stub
// values; zero-value stubs behave like a healthy engine.
type Mock struct {
	mu    sync.Mutex
	calls []MockCall

	PrepareResult *Preparation
	PrepareErr    error

	EnsureNetworksErr error
	EnsureVolumesErr  error

	BuildResult string
	BuildErr    error

	CreateResult *RunningContainer
	CreateErr    error

	StartErr error

	// ExecResults are consumed in call order; once exhausted, Exec
	// returns a zero exit with empty output.
	ExecResults []*ExecResult
	ExecErr     error

	StopErr    error
	CleanupErr error
}

// NewMock creates a mock provider with healthy defaults.
func NewMock() *Mock {
	return &Mock{}
}

var _ Provider = (*Mock)(nil)

func (m *Mock) record(call MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns a copy of the recorded operations in invocation order.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ExecArgv returns just the argv of every recorded Exec call, in order.
func (m *Mock) ExecArgv() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]string
	for _, call := range m.calls {
		if call.Op == "exec" {
			out = append(out, call.Argv)
		}
	}
	return out
}

func (m *Mock) Kind() Kind { return KindMock }

func (m *Mock) Prepare(_ context.Context, cfg *config.ResolvedConfig) (*Preparation, error) {
	m.record(MockCall{Op: "prepare"})
	if m.PrepareErr != nil {
		return nil, m.PrepareErr
	}
	if m.PrepareResult != nil {
		return m.PrepareResult, nil
	}
	return &Preparation{
		Image:              Image{Reference: cfg.ImageReference},
		ContainerName:      "devcontainer-mock",
		ProjectSlug:        "mock",
		WorkspaceMountPath: "/workspaces/mock",
	}, nil
}

func (m *Mock) EnsureNetworks(_ context.Context, _ *config.ResolvedConfig, _ *Preparation) error {
	m.record(MockCall{Op: "ensure_networks"})
	return m.EnsureNetworksErr
}

func (m *Mock) EnsureVolumes(_ context.Context, _ *config.ResolvedConfig, _ *Preparation) error {
	m.record(MockCall{Op: "ensure_volumes"})
	return m.EnsureVolumesErr
}

func (m *Mock) BuildImage(_ context.Context, _ *config.ResolvedConfig, prep *Preparation) (string, error) {
	m.record(MockCall{Op: "build_image"})
	if m.BuildErr != nil {
		return "", m.BuildErr
	}
	if m.BuildResult != "" {
		return m.BuildResult, nil
	}
	if prep.Image.Build != nil {
		return prep.Image.Build.Tag, nil
	}
	return prep.Image.Reference, nil
}

func (m *Mock) CreateContainer(_ context.Context, _ *config.ResolvedConfig, prep *Preparation, _ string) (*RunningContainer, error) {
	m.record(MockCall{Op: "create_container"})
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResult != nil {
		return m.CreateResult, nil
	}
	return &RunningContainer{ID: "mock-id", Name: prep.ContainerName}, nil
}

func (m *Mock) StartContainer(_ context.Context, _ *RunningContainer) error {
	m.record(MockCall{Op: "start_container"})
	return m.StartErr
}

func (m *Mock) Exec(_ context.Context, _ *RunningContainer, argv []string) (*ExecResult, error) {
	m.record(MockCall{Op: "exec", Argv: argv})
	if m.ExecErr != nil {
		return nil, m.ExecErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ExecResults) > 0 {
		result := m.ExecResults[0]
		m.ExecResults = m.ExecResults[1:]
		return result, nil
	}
	return &ExecResult{}, nil
}

func (m *Mock) StopContainer(_ context.Context, _ *config.ResolvedConfig, _ *Preparation, _ *RunningContainer) error {
	m.record(MockCall{Op: "stop_container"})
	return m.StopErr
}

func (m *Mock) Cleanup(_ context.Context, _ *config.ResolvedConfig, _ *Preparation, _ CleanupOptions) error {
	m.record(MockCall{Op: "cleanup"})
	return m.CleanupErr
}
