// Package resource implements a Controller for global limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Track and limit memory usage across the library (e.g. block caches)
//   - Concurrency: Limit background worker goroutines (uploads, rebuilds)
//   - IO: Rate-limit background IO to avoid starving foreground reads
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory blocks until memory is available or the
// context is canceled; TryAcquireMemory never blocks:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ctx, 1024*1024); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(1024 * 1024)
//
// # Background Worker Limits
//
// Limits concurrent background operations (uploads, column rebuilds):
//
//	rc := resource.NewController(resource.Config{
//	    MaxBackgroundWorkers: 4,
//	})
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
// # IO Rate Limiting
//
// Token bucket rate limiter for background IO:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireIO(ctx, 4096); err != nil {
//	    return err
//	}
//
//	// Rate-limited writer/reader wrappers
//	writer := resource.NewRateLimitedWriter(ctx, file, rc)
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully and become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
