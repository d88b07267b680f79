// Package integrations provides HTTP plumbing for remote mod registries.
//
// # Overview
//
// Registry clients live in subpackages and embed [Client]:
//
//   - [modportal]: the Factorio mod portal
//
// # Client Pattern
//
//	client := modportal.NewClient(backend, 24*time.Hour)
//	info, err := client.FetchMod(ctx, "flib", false) // false = use cache
//
// [Client] handles:
//   - JSON GET requests with retry on transient failures
//   - Response caching through any [cache.Cache] backend
//   - Streaming downloads without an overall timeout
//
// Requests and cache lookups are reported through the observability
// package's HTTP and cache hooks.
//
// # Errors
//
// 404 responses map to [ErrNotFound]. Transport failures and other
// non-200 statuses map to [ErrNetwork]; 5xx and 429 are additionally
// marked retryable.
//
// [modportal]: github.com/matzehuels/famtools/pkg/integrations/modportal
// [cache.Cache]: github.com/matzehuels/famtools/pkg/cache.Cache
package integrations
