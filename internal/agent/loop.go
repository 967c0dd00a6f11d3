// Package agent runs the reasoning loop: a Reasoner picks the next function
// from the visible catalog, the loop calls it through the registry and feeds
// the outcome back until the reasoner answers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"goa.design/clue/log"

	"fnrelay/gateway/internal/registry"
)

const DefaultMaxSteps = 8

var (
	ErrStepLimit     = errors.New("agent step limit reached")
	ErrEmptyAction   = errors.New("reasoner returned neither a call nor an answer")
	ErrNoInstruction = errors.New("instruction is required")
)

// Action is one decision of the reasoner: call FunctionName with Args, or
// stop with FinalAnswer.
type Action struct {
	// ID correlates the call with its result in the reasoner's transcript.
	ID           string
	FunctionName string
	Args         map[string]any
	FinalAnswer  string
}

func (a Action) IsFinal() bool {
	return a.FunctionName == ""
}

// Step is one executed call. On failure ErrorKind holds the registry error
// code and ErrorMessage its public text.
type Step struct {
	ID           string
	FunctionName string
	Args         map[string]any
	Result       any
	ErrorKind    string
	ErrorMessage string
}

func (s Step) Failed() bool {
	return s.ErrorKind != ""
}

type Reasoner interface {
	ChooseAction(ctx context.Context, instruction string, catalog registry.Catalog, history []Step) (Action, error)
}

type Invoker interface {
	Catalog() registry.Catalog
	CallByName(ctx context.Context, name string, args map[string]any) (any, error)
}

type Options struct {
	MaxSteps int
}

type Loop struct {
	invoker  Invoker
	reasoner Reasoner
	maxSteps int
}

func NewLoop(invoker Invoker, reasoner Reasoner, opts Options) *Loop {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &Loop{invoker: invoker, reasoner: reasoner, maxSteps: opts.MaxSteps}
}

type Result struct {
	Answer string
	Steps  []Step
}

// Run drives the reasoner until it answers. Steps taken so far are returned
// alongside any error.
func (l *Loop) Run(ctx context.Context, instruction string) (Result, error) {
	if instruction == "" {
		return Result{}, ErrNoInstruction
	}
	var steps []Step
	for {
		if err := ctx.Err(); err != nil {
			return Result{Steps: steps}, err
		}
		catalog := l.invoker.Catalog()
		action, err := l.reasoner.ChooseAction(ctx, instruction, catalog, steps)
		if err != nil {
			return Result{Steps: steps}, fmt.Errorf("choose action: %w", err)
		}
		if action.IsFinal() {
			if action.FinalAnswer == "" {
				return Result{Steps: steps}, ErrEmptyAction
			}
			return Result{Answer: action.FinalAnswer, Steps: steps}, nil
		}
		if len(steps) >= l.maxSteps {
			return Result{Steps: steps}, fmt.Errorf("%w after %d calls", ErrStepLimit, len(steps))
		}
		steps = append(steps, l.call(ctx, catalog, action, len(steps)))
	}
}

func (l *Loop) call(ctx context.Context, catalog registry.Catalog, action Action, index int) Step {
	step := Step{ID: action.ID, FunctionName: action.FunctionName, Args: action.Args}
	if step.ID == "" {
		step.ID = "call_" + strconv.Itoa(index+1)
	}
	if !offered(catalog, action.FunctionName) {
		notFound := &registry.NotFoundError{Name: action.FunctionName}
		step.ErrorKind, step.ErrorMessage = registry.Code(notFound), notFound.Error()
		return step
	}
	result, err := l.invoker.CallByName(ctx, action.FunctionName, action.Args)
	if err != nil {
		step.ErrorKind, step.ErrorMessage = registry.Code(err), registry.PublicMessage(err)
		if step.ErrorKind == "" {
			step.ErrorKind = registry.ErrExecution.Error()
		}
		log.Print(ctx,
			log.KV{K: "msg", V: "agent call failed"},
			log.KV{K: "function", V: action.FunctionName},
			log.KV{K: "kind", V: step.ErrorKind},
			log.KV{K: "err", V: err.Error()},
		)
		return step
	}
	step.Result = result
	return step
}

// offered limits the agent to what discovery shows it.
func offered(catalog registry.Catalog, name string) bool {
	for _, fn := range catalog.Functions {
		if fn.Name == name {
			return true
		}
	}
	return false
}
