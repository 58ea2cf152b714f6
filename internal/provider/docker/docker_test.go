package docker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/provider"
)

// fakeRunner scripts engine command outputs by their joined argument
// string. Unscripted commands succeed with empty output.
type fakeRunner struct {
	responses map[string]CommandOutput
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, program string, args ...string) (CommandOutput, error) {
	line := strings.Join(args, " ")
	f.calls = append(f.calls, line)
	out, ok := f.responses[line]
	if !ok {
		out = CommandOutput{}
	}
	out.Command = program + " " + line
	return out, nil
}

func (f *fakeRunner) stub(line string, out CommandOutput) {
	if f.responses == nil {
		f.responses = map[string]CommandOutput{}
	}
	f.responses[line] = out
}

func (f *fakeRunner) called(line string) bool {
	for _, call := range f.calls {
		if call == line {
			return true
		}
	}
	return false
}

func newTestProvider(runner *fakeRunner, sink events.Sink) *Provider {
	return New(Options{
		Command: "/usr/bin/docker",
		Events:  sink,
		Runner:  runner,
	})
}

func referenceConfig(t *testing.T) *config.ResolvedConfig {
	t.Helper()
	workspace := t.TempDir()
	return &config.ResolvedConfig{
		ProjectName:     "Sample Project",
		WorkspaceFolder: workspace,
		ConfigPath:      filepath.Join(workspace, ".devcontainer", "devcontainer.json"),
		ImageReference:  "ghcr.io/devcontainers/base:latest",
	}
}

func TestPrepare_ReferenceImageMetadata(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep, err := p.Prepare(context.Background(), referenceConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "devcontainer-sample-project", prep.ContainerName)
	assert.Equal(t, "sample-project", prep.ProjectSlug)
	assert.Equal(t, "/workspaces/sample-project", prep.WorkspaceMountPath)
	assert.Equal(t, []string{"devcontainer-sample-project-network"}, prep.Networks)
	require.Len(t, prep.Volumes, 1)
	assert.Equal(t, "devcontainer-sample-project-data", prep.Volumes[0].Name)
	assert.Equal(t, "/workspaces/.devcontainer", prep.Volumes[0].MountPath)
	assert.Equal(t, "ghcr.io/devcontainers/base:latest", prep.Image.Reference)
	assert.True(t, runner.called("version --format {{.Server.Version}}"))
}

func TestPrepare_IsDeterministic(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	cfg := referenceConfig(t)

	first, err := p.Prepare(context.Background(), cfg)
	require.NoError(t, err)
	second, err := p.Prepare(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPrepare_MissingWorkspaceFails(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	cfg := referenceConfig(t)
	cfg.WorkspaceFolder = filepath.Join(cfg.WorkspaceFolder, "gone")

	_, err := p.Prepare(context.Background(), cfg)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "workspace folder")
}

func TestPrepare_DockerfileBuildContext(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	cfg := referenceConfig(t)
	cfg.ImageReference = ""
	devcontainerDir := filepath.Join(cfg.WorkspaceFolder, ".devcontainer")
	require.NoError(t, os.MkdirAll(devcontainerDir, 0o755))
	cfg.Dockerfile = filepath.Join(devcontainerDir, "Dockerfile")
	require.NoError(t, os.WriteFile(cfg.Dockerfile, []byte("FROM scratch\n"), 0o644))

	prep, err := p.Prepare(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, prep.Image.Build)
	assert.Equal(t, cfg.Dockerfile, prep.Image.Build.Dockerfile)
	assert.Equal(t, devcontainerDir, prep.Image.Build.Context)
	assert.Equal(t, "devcontainer-sample-project:latest", prep.Image.Build.Tag)
}

func TestPrepare_MissingDockerfileFails(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	cfg := referenceConfig(t)
	cfg.ImageReference = ""
	cfg.Dockerfile = filepath.Join(cfg.WorkspaceFolder, "Dockerfile")

	_, err := p.Prepare(context.Background(), cfg)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "dockerfile")
}

func TestPrepare_NeitherImageNorDockerfileFails(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	cfg := referenceConfig(t)
	cfg.ImageReference = ""

	_, err := p.Prepare(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`image` or `dockerFile`")
}

func TestEnsureNetworks_CreatesOnlyMissing(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("network inspect devcontainer-x-network", CommandOutput{
		ExitCode: 1,
		Stderr:   "Error: No such network: devcontainer-x-network",
	})
	bus := events.NewBus()
	var seen []events.EventType
	bus.Subscribe(func(e events.Event) { seen = append(seen, e.Type) })
	p := newTestProvider(runner, bus)

	prep := &provider.Preparation{Networks: []string{"devcontainer-x-network"}}
	require.NoError(t, p.EnsureNetworks(context.Background(), nil, prep))
	assert.True(t, runner.called("network create devcontainer-x-network"))
	assert.Equal(t, []events.EventType{events.NetworkCreated}, seen)
}

func TestEnsureNetworks_ExistingIsNoOp(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Networks: []string{"devcontainer-x-network"}}
	require.NoError(t, p.EnsureNetworks(context.Background(), nil, prep))
	assert.False(t, runner.called("network create devcontainer-x-network"))
}

func TestEnsureNetworks_OtherInspectFailureIsError(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("network inspect devcontainer-x-network", CommandOutput{
		ExitCode: 1,
		Stderr:   "Cannot connect to the Docker daemon",
	})
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Networks: []string{"devcontainer-x-network"}}
	err := p.EnsureNetworks(context.Background(), nil, prep)
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Command, "network inspect devcontainer-x-network")
	assert.Equal(t, 1, provErr.ExitCode)
	assert.Contains(t, provErr.Stderr, "daemon")
}

func TestEnsureVolumes_CreatesOnlyMissing(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("volume inspect devcontainer-x-data", CommandOutput{
		ExitCode: 1,
		Stderr:   "Error: No such volume: devcontainer-x-data",
	})
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Volumes: []provider.VolumeSpec{{Name: "devcontainer-x-data", MountPath: "/workspaces/.devcontainer"}}}
	require.NoError(t, p.EnsureVolumes(context.Background(), nil, prep))
	assert.True(t, runner.called("volume create devcontainer-x-data"))
}

func TestBuildImage_UsesLocalImage(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Image: provider.Image{Reference: "example:latest"}}
	ref, err := p.BuildImage(context.Background(), nil, prep)
	require.NoError(t, err)
	assert.Equal(t, "example:latest", ref)
	assert.False(t, runner.called("pull example:latest"))
}

func TestBuildImage_PullsWhenAbsent(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("image inspect example:latest", CommandOutput{
		ExitCode: 1,
		Stderr:   "Error: No such image: example:latest",
	})
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Image: provider.Image{Reference: "example:latest"}}
	ref, err := p.BuildImage(context.Background(), nil, prep)
	require.NoError(t, err)
	assert.Equal(t, "example:latest", ref)
	assert.True(t, runner.called("pull example:latest"))
}

func TestBuildImage_BuildsFromContext(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{Image: provider.Image{Build: &provider.BuildContext{
		Dockerfile: "/ws/.devcontainer/Dockerfile",
		Context:    "/ws/.devcontainer",
		Tag:        "devcontainer-x:latest",
	}}}
	ref, err := p.BuildImage(context.Background(), nil, prep)
	require.NoError(t, err)
	assert.Equal(t, "devcontainer-x:latest", ref)
	assert.True(t, runner.called("build -f /ws/.devcontainer/Dockerfile -t devcontainer-x:latest /ws/.devcontainer"))
}

func TestCreateContainer_ArgsAndIdentity(t *testing.T) {
	runner := &fakeRunner{}
	cfg := referenceConfig(t)
	prep := &provider.Preparation{
		Image:         provider.Image{Reference: "example:latest"},
		ContainerName: "devcontainer-sample-project",
		ProjectSlug:   "sample-project",
		Networks:      []string{"devcontainer-sample-project-network"},
		Volumes: []provider.VolumeSpec{{
			Name:      "devcontainer-sample-project-data",
			MountPath: "/workspaces/.devcontainer",
		}},
		WorkspaceMountPath: "/workspaces/sample-project",
	}

	createLine := strings.Join([]string{
		"create",
		"--name", "devcontainer-sample-project",
		"--hostname", "devcontainer-sample-project",
		"--network", "devcontainer-sample-project-network",
		"--label", "devcontainer.project=Sample Project",
		"--workdir", "/workspaces/sample-project",
		"--mount", "type=bind,src=" + cfg.WorkspaceFolder + ",dst=/workspaces/sample-project",
		"--mount", "type=volume,src=devcontainer-sample-project-data,dst=/workspaces/.devcontainer",
		"example:latest", "sleep", "infinity",
	}, " ")
	runner.stub(createLine, CommandOutput{Stdout: "abc123\n"})
	runner.stub("container rm --force devcontainer-sample-project", CommandOutput{
		ExitCode: 1,
		Stderr:   "Error: No such container: devcontainer-sample-project",
	})

	p := newTestProvider(runner, nil)
	container, err := p.CreateContainer(context.Background(), cfg, prep, "example:latest")
	require.NoError(t, err)

	assert.Equal(t, "abc123", container.ID)
	assert.Equal(t, "devcontainer-sample-project", container.Name)
	assert.Equal(t, "container rm --force devcontainer-sample-project", runner.calls[0])
	assert.True(t, runner.called(createLine))
}

func TestStartContainer_PrefersName(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	err := p.StartContainer(context.Background(), &provider.RunningContainer{ID: "abc123", Name: "devcontainer-x"})
	require.NoError(t, err)
	assert.True(t, runner.called("start devcontainer-x"))
}

func TestStartContainer_NoIdentifierFails(t *testing.T) {
	p := newTestProvider(&fakeRunner{}, nil)
	err := p.StartContainer(context.Background(), &provider.RunningContainer{})
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
}

func TestExec_EmptyArgvShortCircuits(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	result, err := p.Exec(context.Background(), &provider.RunningContainer{Name: "devcontainer-x"}, nil)
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)
	assert.Empty(t, runner.calls)
}

func TestExec_CapturesOutcome(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("exec devcontainer-x /bin/sh -c exit 3", CommandOutput{
		ExitCode: 3,
		Stdout:   "out",
		Stderr:   "err",
	})
	p := newTestProvider(runner, nil)

	result, err := p.Exec(context.Background(), &provider.RunningContainer{Name: "devcontainer-x"},
		[]string{"/bin/sh", "-c", "exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out", result.Stdout)
	assert.Equal(t, "err", result.Stderr)
}

func TestExec_TimeoutIsDistinguishable(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("exec devcontainer-x sleep 100", CommandOutput{
		ExitCode: -1,
		TimedOut: true,
	})
	p := newTestProvider(runner, nil)

	_, err := p.Exec(context.Background(), &provider.RunningContainer{Name: "devcontainer-x"},
		[]string{"sleep", "100"})
	require.Error(t, err)
	assert.True(t, provider.IsTimeout(err))
}

func TestStopContainer_BenignAbsence(t *testing.T) {
	for _, stderr := range []string{
		"Error: No such container: devcontainer-x",
		"Error response from daemon: container devcontainer-x is not running",
	} {
		runner := &fakeRunner{}
		runner.stub("container stop devcontainer-x", CommandOutput{ExitCode: 1, Stderr: stderr})
		p := newTestProvider(runner, nil)

		prep := &provider.Preparation{ContainerName: "devcontainer-x"}
		err := p.StopContainer(context.Background(), nil, prep, &provider.RunningContainer{Name: "devcontainer-x"})
		assert.NoError(t, err, stderr)
	}
}

func TestStopContainer_FallsBackToPreparedName(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{ContainerName: "devcontainer-x"}
	require.NoError(t, p.StopContainer(context.Background(), nil, prep, &provider.RunningContainer{}))
	assert.True(t, runner.called("container stop devcontainer-x"))
}

func TestCleanup_NotFoundEverywhereIsSuccess(t *testing.T) {
	runner := &fakeRunner{}
	runner.stub("container rm --force --volumes devcontainer-x", CommandOutput{
		ExitCode: 1, Stderr: "Error: No such container: devcontainer-x",
	})
	runner.stub("network rm devcontainer-x-network", CommandOutput{
		ExitCode: 1, Stderr: "Error: No such network: devcontainer-x-network",
	})
	runner.stub("volume rm devcontainer-x-data", CommandOutput{
		ExitCode: 1, Stderr: "Error: No such volume: devcontainer-x-data",
	})
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{
		ContainerName: "devcontainer-x",
		Networks:      []string{"devcontainer-x-network"},
		Volumes:       []provider.VolumeSpec{{Name: "devcontainer-x-data"}},
	}
	err := p.Cleanup(context.Background(), nil, prep, provider.CleanupOptions{RemoveVolumes: true})
	assert.NoError(t, err)
}

func TestCleanup_SkipsVolumesUnlessRequested(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProvider(runner, nil)

	prep := &provider.Preparation{
		ContainerName: "devcontainer-x",
		Volumes:       []provider.VolumeSpec{{Name: "devcontainer-x-data"}},
	}
	require.NoError(t, p.Cleanup(context.Background(), nil, prep, provider.CleanupOptions{}))
	assert.False(t, runner.called("volume rm devcontainer-x-data"))
	assert.True(t, runner.called("container rm --force devcontainer-x"))
}

func TestCleanup_RemoveUnknownWarns(t *testing.T) {
	runner := &fakeRunner{}
	bus := events.NewBus()
	var warnings []events.Event
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.Warning {
			warnings = append(warnings, e)
		}
	})
	p := newTestProvider(runner, bus)

	prep := &provider.Preparation{ContainerName: "devcontainer-x"}
	require.NoError(t, p.Cleanup(context.Background(), nil, prep, provider.CleanupOptions{RemoveUnknown: true}))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Detail, "remove-unknown")
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Sample Project", "sample-project"},
		{"already-clean_1.0", "already-clean_1.0"},
		{"--Trim Me--", "trim-me"},
		{"///", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := SanitizeName(tt.input)
		if tt.want == "" {
			assert.Equal(t, "devcontainer", got, tt.input)
			continue
		}
		assert.Equal(t, tt.want, got, tt.input)
	}
}
