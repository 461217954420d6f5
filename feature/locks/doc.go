// Package locks programs guest codes on the physical locks with a bounded
// retry-and-verify protocol.
//
// A verified write is: set the code, wait for the device to settle, request a
// refresh, wait again, read the code table back and compare the slot entry to
// the intended code. A mismatch is retryable (up to the configured attempt
// budget with a fixed backoff); an unparseable code table is not — the device
// state is malformed and the lock is reported failed immediately.
//
// Locks are processed one full retry cycle at a time to avoid overwhelming
// the hub. A lock that exhausts its retries is reported in its Result without
// affecting the remaining locks. Code removal is fire-and-forget: one delete
// per lock, no verification.
package locks
