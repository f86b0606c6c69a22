// Package retry provides exponential backoff and retry logic for transient
// failures talking to the Roblox web API.
//
// Retrying is opt-in. FromConfig returns nil for a disabled retry section and
// Do treats a nil *Config as a single attempt:
//
//	policy := retry.FromConfig(cfg.Retry, log)
//	page, err := retry.DoWithResult(ctx, func(ctx context.Context) (*roblox.Instances, error) {
//		return fetch(ctx)
//	}, policy)
//
// Only transport, rate-limit and 5xx failures are retried. Decode errors and
// auth rejections are returned immediately.
package retry
