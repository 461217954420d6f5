// Package hub provides the client for the home automation hub's HTTP API.
//
// The hub exposes a GET-only, key-authenticated API: device listing, lock code
// programming (setCode/deleteCode/getCodes), device refresh, and house mode
// listing/activation. All higher-level behavior (retry, verification,
// cooldowns) lives in the lock programmer and mode controller; this package is
// a thin, strictly-timed transport.
//
// A testify-based mock implementation of Client lives in hub/mocks for use in
// feature tests.
package hub
