package lifecycle

import (
	"fmt"

	"github.com/devcgo/devc/internal/config"
)

// Fixed skip reasons used when a hook has no configured command.
const (
	SkipReasonNoPostCreateCommand = "no postCreateCommand defined"
	SkipReasonNoPostAttachCommand = "no postAttachCommand defined"
)

// HookAction says whether a hook phase runs its configured command or is
// skipped, and why.
type HookAction struct {
	Execute    bool   `json:"execute"`
	SkipReason string `json:"skipReason,omitempty"`
}

// StepDetail is the structured payload attached to a plan step. Only the
// fields relevant to the step's phase are set.
type StepDetail struct {
	ConfigPath     string      `json:"configPath,omitempty"`
	ProjectName    string      `json:"projectName,omitempty"`
	ImageReference string      `json:"imageReference,omitempty"`
	Dockerfile     string      `json:"dockerfile,omitempty"`
	Hook           *HookAction `json:"hook,omitempty"`
}

// Step is one planned phase.
type Step struct {
	Phase   Phase      `json:"phase"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Detail  StepDetail `json:"detail"`
}

// Plan is the ordered sequence of steps for one lifecycle run: every
// phase exactly once, in fixed order. Plans are built once and never
// modified.
type Plan struct {
	Steps []Step `json:"steps"`
}

// Step returns the plan entry for the given phase.
func (p Plan) Step(phase Phase) (Step, bool) {
	for _, step := range p.Steps {
		if step.Phase == phase {
			return step, true
		}
	}
	return Step{}, false
}

// PlanOptions adjust hook handling for one run. A non-empty skip reason
// forces the corresponding hook to be skipped, regardless of whether a
// command is configured.
type PlanOptions struct {
	SkipPostCreateReason string
	SkipPostAttachReason string
}

// PlanForUp derives the provisioning plan for an `up` run. Pure function:
// no I/O, no side effects.
func PlanForUp(cfg *config.ResolvedConfig, opts PlanOptions) Plan {
	buildStep := Step{
		Phase: PhaseBuild,
		Code:  "lifecycle.build",
	}
	if cfg.ImageReference != "" {
		buildStep.Message = fmt.Sprintf("Ensure pre-built image %s is available", cfg.ImageReference)
		buildStep.Detail = StepDetail{ImageReference: cfg.ImageReference}
	} else {
		buildStep.Message = "Build image from workspace"
		buildStep.Detail = StepDetail{Dockerfile: cfg.Dockerfile}
	}

	return Plan{Steps: []Step{
		{
			Phase:   PhaseResolve,
			Code:    "lifecycle.resolve",
			Message: "Resolve devcontainer configuration",
			Detail:  StepDetail{ConfigPath: cfg.ConfigPath},
		},
		buildStep,
		{
			Phase:   PhaseCreate,
			Code:    "lifecycle.create",
			Message: fmt.Sprintf("Create devcontainer for %s", cfg.ProjectName),
			Detail:  StepDetail{ProjectName: cfg.ProjectName},
		},
		{
			Phase:   PhaseStart,
			Code:    "lifecycle.start",
			Message: fmt.Sprintf("Start devcontainer for %s", cfg.ProjectName),
			Detail:  StepDetail{ProjectName: cfg.ProjectName},
		},
		hookStep(PhasePostCreate, "lifecycle.postCreate", "postCreateCommand",
			cfg.PostCreateCommand != nil, opts.SkipPostCreateReason, SkipReasonNoPostCreateCommand),
		hookStep(PhasePostAttach, "lifecycle.postAttach", "postAttachCommand",
			cfg.PostAttachCommand != nil, opts.SkipPostAttachReason, SkipReasonNoPostAttachCommand),
	}}
}

// hookStep applies the three-way precedence: an explicit caller skip wins
// over the absent-command skip, which wins over execution.
func hookStep(phase Phase, code, commandField string, hasCommand bool, explicitSkip, absentSkip string) Step {
	step := Step{Phase: phase, Code: code}

	switch {
	case explicitSkip != "":
		step.Message = fmt.Sprintf("Skip %s: %s", commandField, explicitSkip)
		step.Detail = StepDetail{Hook: &HookAction{SkipReason: explicitSkip}}
	case !hasCommand:
		step.Message = fmt.Sprintf("Skip %s: %s", commandField, absentSkip)
		step.Detail = StepDetail{Hook: &HookAction{SkipReason: absentSkip}}
	default:
		step.Message = "Run " + commandField
		step.Detail = StepDetail{Hook: &HookAction{Execute: true}}
	}

	return step
}
