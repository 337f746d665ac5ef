// Package ratelimit implements per-client request limiting for the API gateway.
//
// The algorithm is a fixed window with lazy reset: every key owns a window
// start and a counter. A call that arrives after the window has elapsed starts
// a new window. Every call increments the counter, including calls that are
// rejected, so a client hammering the API past its limit stays rejected until
// the window resets.
//
// Window state for idle keys is removed by Sweep, which StartJanitor runs
// periodically. Sweeping only drops windows that have already elapsed, so it
// never changes an Allow decision.
//
// Gateway decisions can be reported to a Recorder. MemoryRecorder keeps totals
// in process; RedisRecorder aggregates them in Redis hashes.
package ratelimit
