package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
	"github.com/devcgo/devc/internal/provider"
)

type recordingSink struct {
	events []events.Event
}

func (s *recordingSink) Emit(event events.Event) {
	s.events = append(s.events, event)
}

func (s *recordingSink) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func upConfig() *config.ResolvedConfig {
	cfg := resolvedWithImage()
	cfg.PostCreateCommand = config.SingleCommand(config.NewShellCommand("echo post create"))
	cfg.PostAttachCommand = config.SingleCommand(config.NewArgvCommand("echo", "post-attach"))
	return cfg
}

func TestExecute_RunsAllPhasesInOrder(t *testing.T) {
	mock := provider.NewMock()
	sink := &recordingSink{}
	cfg := upConfig()

	outcome, err := NewExecutor(mock, sink).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, Phases[:], outcome.ExecutedPhases)
	require.NotNil(t, outcome.Container)
	assert.Equal(t, "devcontainer-mock", outcome.Container.Name)

	var ops []string
	for _, call := range mock.Calls() {
		ops = append(ops, call.Op)
	}
	assert.Equal(t, []string{
		"prepare",
		"ensure_networks",
		"ensure_volumes",
		"build_image",
		"create_container",
		"start_container",
		"exec",
		"exec",
	}, ops)
}

func TestExecute_HookCommandsTranslateToArgv(t *testing.T) {
	mock := provider.NewMock()
	cfg := upConfig()

	_, err := NewExecutor(mock, nil).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.NoError(t, err)

	argv := mock.ExecArgv()
	require.Len(t, argv, 2)
	assert.Equal(t, []string{"/bin/sh", "-c", "echo post create"}, argv[0])
	assert.Equal(t, []string{"echo", "post-attach"}, argv[1])
}

func TestExecute_NamedHookCommandsRunInSortedOrder(t *testing.T) {
	mock := provider.NewMock()
	cfg := resolvedWithImage()
	cfg.PostCreateCommand = config.ParallelCommands(map[string]config.CommandArgs{
		"lint":  config.NewShellCommand("make lint"),
		"build": config.NewShellCommand("make build"),
		"fmt":   config.NewShellCommand("make fmt"),
	})

	_, err := NewExecutor(mock, nil).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.NoError(t, err)

	argv := mock.ExecArgv()
	require.Len(t, argv, 3)
	assert.Equal(t, []string{"/bin/sh", "-c", "make build"}, argv[0])
	assert.Equal(t, []string{"/bin/sh", "-c", "make fmt"}, argv[1])
	assert.Equal(t, []string{"/bin/sh", "-c", "make lint"}, argv[2])
}

func TestExecute_HookFailureAbortsRun(t *testing.T) {
	mock := provider.NewMock()
	mock.ExecResults = []*provider.ExecResult{
		{ExitCode: 7, Stderr: "setup blew up\n"},
	}
	sink := &recordingSink{}
	cfg := upConfig()

	outcome, err := NewExecutor(mock, sink).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.Error(t, err)
	assert.Nil(t, outcome)

	assert.Contains(t, err.Error(), "postCreate")
	assert.Contains(t, err.Error(), "7")
	assert.Contains(t, err.Error(), "setup blew up")

	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 7, provErr.ExitCode)

	// The failed hook is the last exec: postAttach never runs.
	assert.Len(t, mock.ExecArgv(), 1)

	failed := sink.ofType(events.PhaseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "postCreate", failed[0].Phase)
}

func TestExecute_NamedHookFailureNamesCommand(t *testing.T) {
	mock := provider.NewMock()
	mock.ExecResults = []*provider.ExecResult{
		{ExitCode: 0},
		{ExitCode: 3, Stderr: "no tests"},
	}
	cfg := resolvedWithImage()
	cfg.PostCreateCommand = config.ParallelCommands(map[string]config.CommandArgs{
		"build": config.NewShellCommand("make build"),
		"test":  config.NewShellCommand("make test"),
	})

	_, err := NewExecutor(mock, nil).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"test"`)
	assert.Contains(t, err.Error(), "3")
}

func TestExecute_SkippedHookStillCountsAsExecuted(t *testing.T) {
	mock := provider.NewMock()
	sink := &recordingSink{}
	cfg := resolvedWithImage()

	outcome, err := NewExecutor(mock, sink).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.NoError(t, err)

	assert.Equal(t, Phases[:], outcome.ExecutedPhases)
	assert.Empty(t, mock.ExecArgv())

	skipped := sink.ofType(events.PhaseSkipped)
	require.Len(t, skipped, 2)
	assert.Equal(t, "postCreate", skipped[0].Phase)
	assert.Equal(t, SkipReasonNoPostCreateCommand, skipped[0].Detail)
	assert.Equal(t, "postAttach", skipped[1].Phase)
	assert.Equal(t, SkipReasonNoPostAttachCommand, skipped[1].Detail)
}

func TestExecute_ExplicitSkipSuppressesConfiguredHook(t *testing.T) {
	mock := provider.NewMock()
	cfg := upConfig()

	opts := PlanOptions{
		SkipPostCreateReason: "already provisioned",
		SkipPostAttachReason: "already provisioned",
	}
	outcome, err := NewExecutor(mock, nil).Execute(context.Background(), cfg, PlanForUp(cfg, opts))
	require.NoError(t, err)
	assert.Equal(t, Phases[:], outcome.ExecutedPhases)
	assert.Empty(t, mock.ExecArgv())
}

func TestExecute_BuildFailureStopsBeforeCreate(t *testing.T) {
	mock := provider.NewMock()
	mock.BuildErr = &provider.Error{Message: "image pull failed", ExitCode: 1}
	sink := &recordingSink{}
	cfg := upConfig()

	outcome, err := NewExecutor(mock, sink).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.Error(t, err)
	assert.Nil(t, outcome)

	for _, call := range mock.Calls() {
		assert.NotEqual(t, "create_container", call.Op)
	}
	failed := sink.ofType(events.PhaseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "build", failed[0].Phase)
}

func TestExecute_ExecTransportErrorPropagates(t *testing.T) {
	mock := provider.NewMock()
	mock.ExecErr = errors.New("engine connection dropped")
	cfg := upConfig()

	outcome, err := NewExecutor(mock, nil).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Contains(t, err.Error(), "engine connection dropped")
}

func TestExecute_EmitsCompletionEventsPerPhase(t *testing.T) {
	mock := provider.NewMock()
	sink := &recordingSink{}
	cfg := upConfig()

	_, err := NewExecutor(mock, sink).Execute(context.Background(), cfg, PlanForUp(cfg, PlanOptions{}))
	require.NoError(t, err)

	completed := sink.ofType(events.PhaseCompleted)
	require.Len(t, completed, len(Phases))
	for i, phase := range Phases {
		assert.Equal(t, phase.String(), completed[i].Phase)
	}

	hooks := sink.ofType(events.HookCommandCompleted)
	assert.Len(t, hooks, 2)
}
