// Package dispatch runs tool calls: lookup, validation, handler invocation and
// wrapping of the outcome into a result envelope.
//
// Handler failures are answers, not faults. A handler error of any class is
// returned to the caller as a successful text result. Only an unknown name, a
// validation failure or a handler panic reject the call itself.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
	"toolbox-mcp/internal/telemetry"
	"toolbox-mcp/internal/toolerr"
)

var (
	ErrToolNotFound     = errors.New("unknown tool")
	ErrPromptNotFound   = errors.New("unknown prompt")
	ErrResourceNotFound = errors.New("unknown resource")
	ErrHandlerPanic     = errors.New("handler panicked")
)

const (
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomePanic    = "panic"
)

// Options configures a Dispatcher. Zero values are usable.
type Options struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *telemetry.Metrics
	// Timeout bounds one handler invocation. Zero disables it.
	Timeout time.Duration
}

// Dispatcher invokes registry entries.
type Dispatcher struct {
	reg     *registry.Registry
	log     *slog.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
	timeout time.Duration
}

// New returns a dispatcher over reg.
func New(reg *registry.Registry, opts Options) *Dispatcher {
	d := &Dispatcher{
		reg:     reg,
		log:     opts.Logger,
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer("toolbox-mcp/dispatch")
	}
	return d
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Invoke runs the named tool with raw arguments.
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw map[string]any) (res envelope.Result, err error) {
	start := time.Now()
	callID := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("call.id", callID),
	))
	outcome := toolerr.OutcomeOK
	log := d.log.With("tool", name, "call_id", callID)
	defer func() {
		elapsed := time.Since(start)
		d.metrics.Observe("tool", name, outcome, elapsed)
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		log.Debug("tool call finished", "outcome", outcome, "duration", elapsed)
	}()

	desc, err := d.reg.Tool(name)
	if err != nil {
		outcome = outcomeNotFound
		return envelope.Result{}, fmt.Errorf("%w: %w", ErrToolNotFound, err)
	}

	args, err := desc.Input.Validate(raw)
	if err != nil {
		outcome = outcomeInvalid
		log.Info("tool call rejected", "err", err)
		return envelope.Result{}, err
	}

	res, p, herr := d.runHandler(ctx, desc, args)
	if p != nil {
		outcome = outcomePanic
		log.Error("tool handler panicked", "panic", p.value, "stack", string(p.stack))
		return envelope.Result{}, fmt.Errorf("%w: %s: %v", ErrHandlerPanic, name, p.value)
	}
	if herr != nil {
		outcome = toolerr.Classify(herr)
		log.Warn("tool call failed", "outcome", outcome, "err", herr)
		res = envelope.ErrorText(herr)
	} else if verr := res.Validate(); verr != nil {
		outcome = toolerr.OutcomeError
		log.Error("tool returned malformed result", "err", verr)
		res = envelope.ErrorText(fmt.Errorf("tool %s returned a malformed result: %w", name, verr))
	}
	if desc.Output == envelope.KindText {
		res = res.WithMirror()
	}
	return res, nil
}

type handlerPanic struct {
	value any
	stack []byte
}

func (d *Dispatcher) runHandler(ctx context.Context, desc *registry.ToolDescriptor, args schema.Args) (res envelope.Result, panicked *handlerPanic, err error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			panicked = &handlerPanic{value: p, stack: debug.Stack()}
		}
	}()
	res, err = desc.Handler(ctx, args)
	return res, nil, err
}

// GetPrompt renders the named prompt with string arguments.
func (d *Dispatcher) GetPrompt(ctx context.Context, name string, raw map[string]string) (registry.PromptResult, error) {
	start := time.Now()
	_, span := d.tracer.Start(ctx, "prompt.get", trace.WithAttributes(attribute.String("prompt.name", name)))
	defer span.End()

	outcome := toolerr.OutcomeOK
	defer func() { d.metrics.Observe("prompt", name, outcome, time.Since(start)) }()

	desc, err := d.reg.Prompt(name)
	if err != nil {
		outcome = outcomeNotFound
		return registry.PromptResult{}, fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}
	args, err := desc.Args.ValidateStrings(raw)
	if err != nil {
		outcome = outcomeInvalid
		return registry.PromptResult{}, err
	}
	out, err := desc.Render(args)
	if err != nil {
		outcome = toolerr.Classify(err)
		span.RecordError(err)
		return registry.PromptResult{}, err
	}
	return out, nil
}

// ReadResource returns the contents of the resource at uri.
func (d *Dispatcher) ReadResource(ctx context.Context, uri string) (*registry.ResourceDescriptor, string, error) {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "resource.read", trace.WithAttributes(attribute.String("resource.uri", uri)))
	defer span.End()

	outcome := toolerr.OutcomeOK
	defer func() { d.metrics.Observe("resource", uri, outcome, time.Since(start)) }()

	desc, err := d.reg.Resource(uri)
	if err != nil {
		outcome = outcomeNotFound
		return nil, "", fmt.Errorf("%w: %s", ErrResourceNotFound, uri)
	}
	text, err := desc.Read(ctx)
	if err != nil {
		outcome = toolerr.Classify(err)
		span.RecordError(err)
		return nil, "", err
	}
	return desc, text, nil
}
