// Package telemetry wires OpenTelemetry traces and metrics around kernel and query operations.
package telemetry

import (
	"context"
	"io"

	"github.com/kernelql/kernelql/internal/errors"
)

// Telemeter bundles the tracer and the meter. The zero value is usable and records nothing.
type Telemeter struct {
	*Tracer
	*Meter
}

// NewTelemeter builds the tracer and meter selected by opts.
func NewTelemeter(ctx context.Context, appName, appVersion string, writer io.Writer, opts *Options) (*Telemeter, error) {
	if opts == nil {
		opts = new(Options)
	}

	tracer, err := NewTracer(ctx, appName, appVersion, writer, opts)
	if err != nil {
		return nil, err
	}

	meter, err := NewMeter(ctx, appName, appVersion, writer, opts)
	if err != nil {
		return nil, err
	}

	return &Telemeter{
		Tracer: tracer,
		Meter:  meter,
	}, nil
}

// Collect traces fn and records its duration and outcome under name.
func (tlm *Telemeter) Collect(ctx context.Context, name string, attrs map[string]any, fn func(childCtx context.Context) error) error {
	if tlm == nil {
		return fn(ctx)
	}

	return tlm.Time(ctx, name, attrs, func(ctx context.Context) error {
		return tlm.Trace(ctx, name, attrs, fn)
	})
}

// Shutdown flushes and stops the exporters.
func (tlm *Telemeter) Shutdown(ctx context.Context) error {
	if tlm == nil {
		return nil
	}

	errs := &errors.MultiError{}

	if tlm.Tracer != nil && tlm.Tracer.provider != nil {
		errs = errs.Append(tlm.Tracer.provider.Shutdown(ctx))
	}

	if tlm.Meter != nil && tlm.Meter.provider != nil {
		errs = errs.Append(tlm.Meter.provider.Shutdown(ctx))
	}

	return errs.ErrorOrNil()
}
