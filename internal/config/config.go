package config

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Devcontainer is the devcontainer.json document as authored, before any
// override or placeholder resolution. All fields are optional on the wire.
type Devcontainer struct {
	// Name is the human-readable project name
	Name string `json:"name,omitempty"`

	// Image is a pre-built image reference (mutually exclusive with DockerFile)
	Image string `json:"image,omitempty"`

	// DockerFile is a path to a Dockerfile, relative to the config file
	DockerFile string `json:"dockerFile,omitempty"`

	// WorkspaceFolder is the workspace path, host-relative or container-absolute
	WorkspaceFolder string `json:"workspaceFolder,omitempty"`

	// Features maps feature identifiers to their (opaque) option objects
	Features map[string]json.RawMessage `json:"features,omitempty"`

	// ForwardPorts lists ports to forward, in any of the three wire forms
	ForwardPorts []PortSpec `json:"forwardPorts,omitempty"`

	// PostCreateCommand runs once after the container is created
	PostCreateCommand *CommandDefinition `json:"postCreateCommand,omitempty"`

	// PostAttachCommand runs after attaching to the container
	PostAttachCommand *CommandDefinition `json:"postAttachCommand,omitempty"`
}

// ResolvedConfig is the normalized configuration derived once per command
// invocation. It is never mutated after Resolve returns it.
type ResolvedConfig struct {
	// ProjectName is always non-empty (override > name > basename > fallback)
	ProjectName string `json:"projectName"`

	// WorkspaceFolder is the absolute host workspace path
	WorkspaceFolder string `json:"workspaceFolder"`

	// ContainerWorkspaceFolder is set only when the document's
	// workspaceFolder was container-absolute
	ContainerWorkspaceFolder string `json:"containerWorkspaceFolder,omitempty"`

	// ConfigPath is the devcontainer.json location that was read
	ConfigPath string `json:"configPath"`

	ImageReference string `json:"imageReference,omitempty"`

	// Dockerfile is absolute, resolved against the config file's directory
	Dockerfile string `json:"dockerfile,omitempty"`

	Features map[string]json.RawMessage `json:"features,omitempty"`

	ForwardPorts []ForwardPort `json:"forwardPorts,omitempty"`

	PostCreateCommand *CommandDefinition `json:"postCreateCommand,omitempty"`
	PostAttachCommand *CommandDefinition `json:"postAttachCommand,omitempty"`
}

// CommandArgs is a single hook command: either a shell string or an
// explicit argv array.
type CommandArgs struct {
	Shell string
	Argv  []string
}

// NewShellCommand wraps a shell command string.
func NewShellCommand(command string) CommandArgs {
	return CommandArgs{Shell: command}
}

// NewArgvCommand wraps an explicit argument vector.
func NewArgvCommand(argv ...string) CommandArgs {
	return CommandArgs{Argv: argv}
}

// ToExecArgs converts the command into the argv passed to the container
// engine. Shell strings run under /bin/sh -c.
func (c CommandArgs) ToExecArgs() []string {
	if c.Argv != nil {
		return c.Argv
	}
	return []string{"/bin/sh", "-c", c.Shell}
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (c *CommandArgs) UnmarshalJSON(data []byte) error {
	var shell string
	if err := json.Unmarshal(data, &shell); err == nil {
		*c = CommandArgs{Shell: shell}
		return nil
	}
	var argv []string
	if err := json.Unmarshal(data, &argv); err == nil {
		*c = CommandArgs{Argv: argv}
		return nil
	}
	return fmt.Errorf("command must be a string or an array of strings, got %s", data)
}

// MarshalJSON writes back the original wire form.
func (c CommandArgs) MarshalJSON() ([]byte, error) {
	if c.Argv != nil {
		return json.Marshal(c.Argv)
	}
	return json.Marshal(c.Shell)
}

// CommandDefinition is a hook definition: a single command, or a named map
// of commands run under stable names for diagnostics.
type CommandDefinition struct {
	Single   *CommandArgs
	Parallel map[string]CommandArgs
}

// SingleCommand builds a definition holding one command.
func SingleCommand(args CommandArgs) *CommandDefinition {
	return &CommandDefinition{Single: &args}
}

// ParallelCommands builds a definition holding a named command map.
func ParallelCommands(commands map[string]CommandArgs) *CommandDefinition {
	return &CommandDefinition{Parallel: commands}
}

// Names returns the parallel command names in sorted order. Nil for a
// single command.
func (d *CommandDefinition) Names() []string {
	if d == nil || d.Parallel == nil {
		return nil
	}
	names := make([]string, 0, len(d.Parallel))
	for name := range d.Parallel {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON accepts a string, an array of strings, or an object
// mapping names to either form.
func (d *CommandDefinition) UnmarshalJSON(data []byte) error {
	trimmed := firstNonSpace(data)
	if trimmed == '{' {
		var parallel map[string]CommandArgs
		if err := json.Unmarshal(data, &parallel); err != nil {
			return err
		}
		*d = CommandDefinition{Parallel: parallel}
		return nil
	}
	var single CommandArgs
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*d = CommandDefinition{Single: &single}
	return nil
}

// MarshalJSON writes back the original wire form.
func (d CommandDefinition) MarshalJSON() ([]byte, error) {
	if d.Parallel != nil {
		return json.Marshal(d.Parallel)
	}
	if d.Single != nil {
		return json.Marshal(*d.Single)
	}
	return []byte("null"), nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}
