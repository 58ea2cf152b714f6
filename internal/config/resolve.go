package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Fallback project name when neither an override, a document name, nor a
// usable workspace basename exists.
const DefaultProjectName = "devcontainer"

// Source selects where the devcontainer configuration is read from:
// either a workspace directory that is searched for the well-known
// locations, or an explicit file path.
type Source struct {
	workspace  string
	configFile string
}

// WorkspaceSource searches dir for .devcontainer/devcontainer.json, then a
// top-level devcontainer.json.
func WorkspaceSource(dir string) Source {
	return Source{workspace: dir}
}

// FileSource reads the configuration from an explicit path.
func FileSource(path string) Source {
	return Source{configFile: path}
}

func (s Source) resolvePath() (string, error) {
	if s.configFile != "" {
		if _, err := os.Stat(s.configFile); err != nil {
			return "", configErrorf(s.configFile, "configuration file does not exist")
		}
		return s.configFile, nil
	}

	candidate := filepath.Join(s.workspace, ".devcontainer", "devcontainer.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	fallback := filepath.Join(s.workspace, "devcontainer.json")
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}

	return "", configErrorf(s.workspace, "failed to locate devcontainer.json")
}

// workspaceRoot is the directory placeholders and relative paths resolve
// against: the workspace itself, or the config file's directory when the
// file was given explicitly.
func (s Source) workspaceRoot(configPath string) string {
	if s.workspace != "" {
		return s.workspace
	}
	return filepath.Dir(configPath)
}

// Overrides are applied on top of the configuration document. Empty
// fields mean "no override".
type Overrides struct {
	ProjectName     string
	WorkspaceFolder string
	ImageReference  string
}

// Resolve reads, validates, and normalizes the configuration selected by
// source. The document is parsed permissively: comments and trailing
// commas are tolerated. Resolve is idempotent; the same source and
// overrides always produce the same ResolvedConfig.
func Resolve(source Source, overrides Overrides) (*ResolvedConfig, error) {
	configPath, err := source.resolvePath()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, configErrorf(configPath, "failed to read configuration: %v", err)
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return nil, configErrorf(configPath, "not valid JSON: %v", err)
	}

	if err := validateDocument(configPath, standardized); err != nil {
		return nil, err
	}

	var doc Devcontainer
	if err := json.Unmarshal(standardized, &doc); err != nil {
		return nil, configErrorf(configPath, "does not match expected structure: %v", err)
	}

	var forwardPorts []ForwardPort
	for _, spec := range doc.ForwardPorts {
		port, err := spec.Normalize()
		if err != nil {
			return nil, err
		}
		forwardPorts = append(forwardPorts, port)
	}

	configDir := filepath.Dir(configPath)
	workspaceRoot := source.workspaceRoot(configPath)

	var dockerfile string
	if doc.DockerFile != "" {
		if filepath.IsAbs(doc.DockerFile) {
			dockerfile = doc.DockerFile
		} else {
			dockerfile = filepath.Join(configDir, doc.DockerFile)
		}
	}

	workspaceFolder := overrides.WorkspaceFolder
	containerWorkspaceFolder := ""
	if doc.WorkspaceFolder != "" {
		substituted := substituteLocalPlaceholders(doc.WorkspaceFolder, workspaceRoot)
		if containerAbsolute(doc.WorkspaceFolder) {
			// Container paths never become the host workspace folder.
			containerWorkspaceFolder = substituted
		} else if workspaceFolder == "" {
			if filepath.IsAbs(substituted) {
				workspaceFolder = substituted
			} else {
				workspaceFolder = filepath.Join(workspaceRoot, substituted)
			}
		}
	}
	if workspaceFolder == "" {
		workspaceFolder = workspaceRoot
	}

	projectName := overrides.ProjectName
	if projectName == "" {
		projectName = doc.Name
	}
	if projectName == "" {
		projectName = filepath.Base(workspaceRoot)
	}
	if projectName == "" || projectName == string(filepath.Separator) || projectName == "." {
		projectName = DefaultProjectName
	}

	imageReference := overrides.ImageReference
	if imageReference == "" {
		imageReference = doc.Image
	}

	return &ResolvedConfig{
		ProjectName:              projectName,
		WorkspaceFolder:          workspaceFolder,
		ContainerWorkspaceFolder: containerWorkspaceFolder,
		ConfigPath:               configPath,
		ImageReference:           imageReference,
		Dockerfile:               dockerfile,
		Features:                 doc.Features,
		ForwardPorts:             forwardPorts,
		PostCreateCommand:        doc.PostCreateCommand,
		PostAttachCommand:        doc.PostAttachCommand,
	}, nil
}

// containerAbsolute reports whether a workspaceFolder value addresses a
// path inside the container (leading slash, ignoring leading whitespace).
func containerAbsolute(folder string) bool {
	return strings.HasPrefix(strings.TrimLeft(folder, " \t"), "/")
}

// substituteLocalPlaceholders expands the two supported host-side
// placeholders against the workspace root.
func substituteLocalPlaceholders(input, workspaceRoot string) string {
	result := input
	if strings.Contains(result, "${localWorkspaceFolderBasename}") {
		result = strings.ReplaceAll(result, "${localWorkspaceFolderBasename}", filepath.Base(workspaceRoot))
	}
	if strings.Contains(result, "${localWorkspaceFolder}") {
		result = strings.ReplaceAll(result, "${localWorkspaceFolder}", workspaceRoot)
	}
	return result
}
