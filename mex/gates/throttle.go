package gates

import "golang.org/x/time/rate"

// Throttles builds one rate.Limiter per engine declared in catalog with a
// positive MaxInvocationsPerSecond, for wiring onto mex.Runtime.Throttles
// (§5: "adapter invocation is where most wall time lives"). Engines with
// no positive rate are left unthrottled — the runtime treats a missing
// entry as "no limiter".
func Throttles(catalog StaticCatalog) map[string]*rate.Limiter {
	out := make(map[string]*rate.Limiter, len(catalog))
	for id, decl := range catalog {
		if decl.MaxInvocationsPerSecond <= 0 {
			continue
		}
		burst := decl.InvocationBurst
		if burst <= 0 {
			burst = 1
		}
		out[id] = rate.NewLimiter(rate.Limit(decl.MaxInvocationsPerSecond), burst)
	}
	return out
}
