package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/provider"
)

// Outcome is the result of a completed lifecycle run.
type Outcome struct {
	// Container is the provisioned container's identity
	Container *provider.RunningContainer

	// ExecutedPhases lists the phases that ran, in order. On success this
	// is all six phases; a run that fails never produces an Outcome.
	ExecutedPhases []Phase
}

// Executor walks a lifecycle plan against one provider instance. Phases
// run strictly in order; the first failure stops the run and leaves any
// provisioned resources in place for inspection.
type Executor struct {
	provider provider.Provider
	events   events.Sink
}

// NewExecutor creates an executor bound to a provider. A nil sink
// discards events.
func NewExecutor(p provider.Provider, sink events.Sink) *Executor {
	if sink == nil {
		sink = events.Discard
	}
	return &Executor{provider: p, events: sink}
}

// Execute runs the plan. On failure the returned error identifies the
// failing phase; no outcome is produced and no rollback is attempted, so
// a failed hook leaves the container running for inspection.
func (e *Executor) Execute(ctx context.Context, cfg *config.ResolvedConfig, plan Plan) (*Outcome, error) {
	executed := make([]Phase, 0, len(Phases))

	complete := func(phase Phase) {
		executed = append(executed, phase)
		e.events.Emit(events.Event{Type: events.PhaseCompleted, Phase: phase.String()})
	}
	fail := func(phase Phase, err error) error {
		e.events.Emit(events.Event{Type: events.PhaseFailed, Phase: phase.String(), Detail: err.Error()})
		return err
	}

	e.events.Emit(events.Event{Type: events.PhaseStarted, Phase: PhaseResolve.String()})
	prep, err := e.provider.Prepare(ctx, cfg)
	if err != nil {
		return nil, fail(PhaseResolve, err)
	}
	complete(PhaseResolve)

	// Networks and volumes are reconciled between Resolve and Build. They
	// are not tracked as phases but must complete before the build runs.
	if err := e.provider.EnsureNetworks(ctx, cfg, prep); err != nil {
		return nil, fail(PhaseBuild, err)
	}
	if err := e.provider.EnsureVolumes(ctx, cfg, prep); err != nil {
		return nil, fail(PhaseBuild, err)
	}

	e.events.Emit(events.Event{Type: events.PhaseStarted, Phase: PhaseBuild.String()})
	imageReference, err := e.provider.BuildImage(ctx, cfg, prep)
	if err != nil {
		return nil, fail(PhaseBuild, err)
	}
	complete(PhaseBuild)

	e.events.Emit(events.Event{Type: events.PhaseStarted, Phase: PhaseCreate.String()})
	container, err := e.provider.CreateContainer(ctx, cfg, prep, imageReference)
	if err != nil {
		return nil, fail(PhaseCreate, err)
	}
	complete(PhaseCreate)

	e.events.Emit(events.Event{Type: events.PhaseStarted, Phase: PhaseStart.String()})
	if err := e.provider.StartContainer(ctx, container); err != nil {
		return nil, fail(PhaseStart, err)
	}
	complete(PhaseStart)

	if err := e.runHook(ctx, PhasePostCreate, cfg.PostCreateCommand, plan, container); err != nil {
		return nil, fail(PhasePostCreate, err)
	}
	complete(PhasePostCreate)

	if err := e.runHook(ctx, PhasePostAttach, cfg.PostAttachCommand, plan, container); err != nil {
		return nil, fail(PhasePostAttach, err)
	}
	complete(PhasePostAttach)

	return &Outcome{Container: container, ExecutedPhases: executed}, nil
}

// runHook executes one hook phase according to its planned action. A
// skipped hook does nothing but still counts as executed.
func (e *Executor) runHook(ctx context.Context, phase Phase, def *config.CommandDefinition, plan Plan, container *provider.RunningContainer) error {
	step, ok := plan.Step(phase)
	if !ok || step.Detail.Hook == nil || !step.Detail.Hook.Execute {
		reason := ""
		if ok && step.Detail.Hook != nil {
			reason = step.Detail.Hook.SkipReason
		}
		e.events.Emit(events.Event{Type: events.PhaseSkipped, Phase: phase.String(), Detail: reason})
		return nil
	}
	if def == nil {
		// Planned Execute without a command cannot happen for plans built
		// by PlanForUp; tolerate it as a skip.
		e.events.Emit(events.Event{Type: events.PhaseSkipped, Phase: phase.String()})
		return nil
	}

	e.events.Emit(events.Event{Type: events.PhaseStarted, Phase: phase.String()})

	if def.Single != nil {
		return e.runHookCommand(ctx, container, phase, "", *def.Single)
	}

	// Named commands run sequentially in key order so the first failure
	// is attributed to exactly one name.
	for _, name := range def.Names() {
		if err := e.runHookCommand(ctx, container, phase, name, def.Parallel[name]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runHookCommand(ctx context.Context, container *provider.RunningContainer, phase Phase, name string, args config.CommandArgs) error {
	argv := args.ToExecArgs()
	e.events.Emit(events.Event{Type: events.HookCommandStarted, Phase: phase.String(), Name: name})

	result, err := e.provider.Exec(ctx, container, argv)
	if err != nil {
		return err
	}

	if result.ExitCode != 0 {
		label := phase.String() + " hook"
		if name != "" {
			label = fmt.Sprintf("%s command %q", label, name)
		}
		return &provider.Error{
			Message:  fmt.Sprintf("%s failed with exit code %d", label, result.ExitCode),
			ExitCode: result.ExitCode,
			Stderr:   strings.TrimSpace(result.Stderr),
		}
	}

	e.events.Emit(events.Event{Type: events.HookCommandCompleted, Phase: phase.String(), Name: name})
	return nil
}
