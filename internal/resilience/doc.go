// Package resilience groups the fault tolerance helpers used on the network
// edges of the monitor:
//   - retry: a small retry policy (attempts, backoff function, retryable predicate)
//     injected into the feed fetcher's repair path
//   - circuitbreaker: gobreaker wrappers that stop a sweep from hammering a dead webhook
//
// Usage Example:
//
//	policy := retry.FeedRepairPolicy()
//	err := retry.Do(ctx, policy, func(ctx context.Context) error {
//	    return download(ctx)
//	})
package resilience
