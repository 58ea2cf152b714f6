// Package docker implements the provider contract by driving a
// docker-compatible engine CLI (docker or podman) as a subprocess.
package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/provider"
)

// Container mount point for the tool's named data volume.
const dataVolumeMountPath = "/workspaces/.devcontainer"

// Options configure a Provider.
type Options struct {
	// Kind selects docker or podman semantics; defaults to docker
	Kind provider.Kind

	// Command is the engine binary name or path; defaults to the kind
	Command string

	// Events receives reconciliation events; defaults to events.Discard
	Events events.Sink

	// Runner substitutes process execution, for tests
	Runner Runner
}

// Provider drives a docker-compatible container engine.
type Provider struct {
	kind    provider.Kind
	command string
	events  events.Sink
	runner  Runner

	cliOnce sync.Once
	cliVal  *engineCLI
	cliErr  error
}

// New creates an engine-CLI provider.
func New(opts Options) *Provider {
	kind := opts.Kind
	if kind == "" {
		kind = provider.KindDocker
	}
	command := opts.Command
	if command == "" {
		command = string(kind)
	}
	sink := opts.Events
	if sink == nil {
		sink = events.Discard
	}
	runner := opts.Runner
	if runner == nil {
		runner = osRunner{}
	}
	return &Provider{kind: kind, command: command, events: sink, runner: runner}
}

var _ provider.Provider = (*Provider)(nil)

func (p *Provider) Kind() provider.Kind { return p.kind }

// cli resolves the engine binary once per provider.
func (p *Provider) cli() (*engineCLI, error) {
	p.cliOnce.Do(func() {
		p.cliVal, p.cliErr = newEngineCLI(p.command, p.runner)
	})
	return p.cliVal, p.cliErr
}

func (p *Provider) Prepare(ctx context.Context, cfg *config.ResolvedConfig) (*provider.Preparation, error) {
	cli, err := p.cli()
	if err != nil {
		return nil, err
	}
	if err := cli.verify(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.WorkspaceFolder); err != nil {
		return nil, &config.ConfigError{
			Path:   cfg.WorkspaceFolder,
			Detail: "workspace folder does not exist",
		}
	}

	slug := SanitizeName(cfg.ProjectName)
	containerName := "devcontainer-" + slug

	var image provider.Image
	switch {
	case cfg.ImageReference != "":
		image = provider.Image{Reference: cfg.ImageReference}
	case cfg.Dockerfile != "":
		if _, err := os.Stat(cfg.Dockerfile); err != nil {
			return nil, &config.ConfigError{
				Path:   cfg.Dockerfile,
				Detail: "dockerfile does not exist",
			}
		}
		buildContext := filepath.Dir(cfg.Dockerfile)
		if buildContext == "" {
			buildContext = cfg.WorkspaceFolder
		}
		image = provider.Image{Build: &provider.BuildContext{
			Dockerfile: cfg.Dockerfile,
			Context:    buildContext,
			Tag:        "devcontainer-" + slug + ":latest",
		}}
	default:
		return nil, &config.ConfigError{
			Path:   cfg.ConfigPath,
			Detail: "devcontainer.json must define either `image` or `dockerFile`",
		}
	}

	return &provider.Preparation{
		Image:         image,
		ContainerName: containerName,
		ProjectSlug:   slug,
		Networks:      []string{"devcontainer-" + slug + "-network"},
		Volumes: []provider.VolumeSpec{{
			Name:      "devcontainer-" + slug + "-data",
			MountPath: dataVolumeMountPath,
		}},
		WorkspaceMountPath: "/workspaces/" + slug,
	}, nil
}

func (p *Provider) EnsureNetworks(ctx context.Context, _ *config.ResolvedConfig, prep *provider.Preparation) error {
	cli, err := p.cli()
	if err != nil {
		return err
	}

	for _, network := range prep.Networks {
		inspect, err := cli.run(ctx, "network", "inspect", network)
		if err != nil {
			return err
		}
		if inspect.Success() {
			p.events.Emit(events.Event{Type: events.NetworkExists, Name: network})
			continue
		}
		if !inspect.absent() {
			return commandError(fmt.Sprintf("failed to inspect network %s", network), inspect)
		}
		if _, err := cli.runExpectSuccess(ctx, "network", "create", network); err != nil {
			return err
		}
		p.events.Emit(events.Event{Type: events.NetworkCreated, Name: network})
	}
	return nil
}

func (p *Provider) EnsureVolumes(ctx context.Context, _ *config.ResolvedConfig, prep *provider.Preparation) error {
	cli, err := p.cli()
	if err != nil {
		return err
	}

	for _, volume := range prep.Volumes {
		inspect, err := cli.run(ctx, "volume", "inspect", volume.Name)
		if err != nil {
			return err
		}
		if inspect.Success() {
			p.events.Emit(events.Event{Type: events.VolumeExists, Name: volume.Name})
			continue
		}
		if !inspect.absent() {
			return commandError(fmt.Sprintf("failed to inspect volume %s", volume.Name), inspect)
		}
		if _, err := cli.runExpectSuccess(ctx, "volume", "create", volume.Name); err != nil {
			return err
		}
		p.events.Emit(events.Event{Type: events.VolumeCreated, Name: volume.Name})
	}
	return nil
}

func (p *Provider) BuildImage(ctx context.Context, _ *config.ResolvedConfig, prep *provider.Preparation) (string, error) {
	cli, err := p.cli()
	if err != nil {
		return "", err
	}

	if build := prep.Image.Build; build != nil {
		_, err := cli.runExpectSuccess(ctx, "build", "-f", build.Dockerfile, "-t", build.Tag, build.Context)
		if err != nil {
			return "", err
		}
		p.events.Emit(events.Event{Type: events.ImageBuilt, Name: build.Tag})
		return build.Tag, nil
	}

	reference := prep.Image.Reference
	inspect, err := cli.run(ctx, "image", "inspect", reference)
	if err != nil {
		return "", err
	}
	if inspect.Success() {
		p.events.Emit(events.Event{Type: events.ImageFound, Name: reference})
		return reference, nil
	}

	if _, err := cli.runExpectSuccess(ctx, "pull", reference); err != nil {
		return "", err
	}
	p.events.Emit(events.Event{Type: events.ImagePulled, Name: reference})
	return reference, nil
}

func (p *Provider) CreateContainer(ctx context.Context, cfg *config.ResolvedConfig, prep *provider.Preparation, imageReference string) (*provider.RunningContainer, error) {
	cli, err := p.cli()
	if err != nil {
		return nil, err
	}

	// A stale container of the same name blocks create; not-found is fine.
	remove, err := cli.run(ctx, "container", "rm", "--force", prep.ContainerName)
	if err != nil {
		return nil, err
	}
	if remove.Success() {
		p.events.Emit(events.Event{Type: events.ContainerRemoved, Name: prep.ContainerName, Detail: "stale container removed before create"})
	}

	args := []string{
		"create",
		"--name", prep.ContainerName,
		"--hostname", prep.ContainerName,
	}
	if len(prep.Networks) > 0 {
		args = append(args, "--network", prep.Networks[0])
	}
	args = append(args,
		"--label", "devcontainer.project="+cfg.ProjectName,
		"--workdir", prep.WorkspaceMountPath,
		"--mount", fmt.Sprintf("type=bind,src=%s,dst=%s", cfg.WorkspaceFolder, prep.WorkspaceMountPath),
	)
	for _, volume := range prep.Volumes {
		args = append(args, "--mount", fmt.Sprintf("type=volume,src=%s,dst=%s", volume.Name, volume.MountPath))
	}
	// The container must idle until exec targets it.
	args = append(args, imageReference, "sleep", "infinity")

	out, err := cli.runExpectSuccess(ctx, args...)
	if err != nil {
		return nil, err
	}

	container := &provider.RunningContainer{
		ID:   strings.TrimSpace(out.Stdout),
		Name: prep.ContainerName,
	}
	p.events.Emit(events.Event{Type: events.ContainerCreated, Name: prep.ContainerName})
	return container, nil
}

func (p *Provider) StartContainer(ctx context.Context, container *provider.RunningContainer) error {
	cli, err := p.cli()
	if err != nil {
		return err
	}
	identifier, err := container.Identifier()
	if err != nil {
		return err
	}
	if _, err := cli.runExpectSuccess(ctx, "start", identifier); err != nil {
		return err
	}
	p.events.Emit(events.Event{Type: events.ContainerStarted, Name: identifier})
	return nil
}

func (p *Provider) Exec(ctx context.Context, container *provider.RunningContainer, argv []string) (*provider.ExecResult, error) {
	if len(argv) == 0 {
		return &provider.ExecResult{}, nil
	}

	cli, err := p.cli()
	if err != nil {
		return nil, err
	}
	identifier, err := container.Identifier()
	if err != nil {
		return nil, err
	}

	args := append([]string{"exec", identifier}, argv...)
	out, err := cli.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if out.TimedOut {
		return nil, commandError("exec timed out", out)
	}

	return &provider.ExecResult{
		ExitCode: out.ExitCode,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
	}, nil
}

func (p *Provider) StopContainer(ctx context.Context, _ *config.ResolvedConfig, prep *provider.Preparation, container *provider.RunningContainer) error {
	cli, err := p.cli()
	if err != nil {
		return err
	}

	identifier, err := container.Identifier()
	if err != nil {
		identifier = prep.ContainerName
	}

	out, err := cli.run(ctx, "container", "stop", identifier)
	if err != nil {
		return err
	}
	if out.Success() || out.absent() {
		p.events.Emit(events.Event{Type: events.ContainerStopped, Name: identifier})
		return nil
	}
	return commandError(fmt.Sprintf("failed to stop container %s", identifier), out)
}

func (p *Provider) Cleanup(ctx context.Context, _ *config.ResolvedConfig, prep *provider.Preparation, opts provider.CleanupOptions) error {
	cli, err := p.cli()
	if err != nil {
		return err
	}

	args := []string{"container", "rm", "--force"}
	if opts.RemoveVolumes {
		args = append(args, "--volumes")
	}
	args = append(args, prep.ContainerName)

	remove, err := cli.run(ctx, args...)
	if err != nil {
		return err
	}
	if !remove.Success() && !remove.absent() {
		return commandError(fmt.Sprintf("failed to remove container %s", prep.ContainerName), remove)
	}
	p.events.Emit(events.Event{Type: events.ContainerRemoved, Name: prep.ContainerName})

	for _, network := range prep.Networks {
		out, err := cli.run(ctx, "network", "rm", network)
		if err != nil {
			return err
		}
		switch {
		case out.Success():
			p.events.Emit(events.Event{Type: events.NetworkRemoved, Name: network})
		case out.absent():
			// Already gone.
		default:
			return commandError(fmt.Sprintf("failed to remove network %s", network), out)
		}
	}

	if opts.RemoveVolumes {
		for _, volume := range prep.Volumes {
			out, err := cli.run(ctx, "volume", "rm", volume.Name)
			if err != nil {
				return err
			}
			switch {
			case out.Success():
				p.events.Emit(events.Event{Type: events.VolumeRemoved, Name: volume.Name})
			case out.absent():
				// Already gone.
			default:
				return commandError(fmt.Sprintf("failed to remove volume %s", volume.Name), out)
			}
		}
	}

	if opts.RemoveUnknown {
		p.events.Emit(events.Event{
			Type:   events.Warning,
			Detail: "remove-unknown cleanup is not implemented for the engine-CLI provider",
		})
	}

	return nil
}

// SanitizeName converts a project name into an engine-safe slug:
// lowercase alphanumerics plus `-_.`, no leading or trailing hyphen,
// never empty.
func SanitizeName(input string) string {
	var b strings.Builder
	for _, ch := range input {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
		case ch == '-' || ch == '_' || ch == '.':
			b.WriteRune(ch)
		default:
			b.WriteRune('-')
		}
	}

	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "devcontainer"
	}
	return result
}
