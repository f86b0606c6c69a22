// Package ratelimit provides client-side request throttling.
//
// Throttling is off unless a requests-per-minute budget is configured; the
// Roblox client calls Wait before every request when a Limiter is set.
//
//	limiter := ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute)
//	if limiter != nil {
//	    if err := limiter.Wait(ctx); err != nil {
//	        return err
//	    }
//	}
package ratelimit
