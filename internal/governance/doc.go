// Package governance provides runtime traffic controls for the gateway,
// currently fixed-window rate limiting keyed by client address.
//
// The limiter sits in front of authentication so unauthenticated floods are
// throttled by transport address, independent of identity. Expired windows
// are evicted so the tracked-client map cannot grow without bound.
package governance
