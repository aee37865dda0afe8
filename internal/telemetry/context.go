package telemetry

import "context"

type telemeterKey struct{}

// ContextWithTelemeter returns a copy of ctx that carries tlm. Operations reached through the
// returned context report to tlm.
func ContextWithTelemeter(ctx context.Context, tlm *Telemeter) context.Context {
	return context.WithValue(ctx, telemeterKey{}, tlm)
}

// TelemeterFromContext returns the telemeter carried by ctx, or a zero Telemeter that records
// nothing.
func TelemeterFromContext(ctx context.Context) *Telemeter {
	if tlm, ok := ctx.Value(telemeterKey{}).(*Telemeter); ok && tlm != nil {
		return tlm
	}

	return new(Telemeter)
}
