// Package cache provides time-bounded memoization of the fetch path.
//
// The cache wraps the fetch primitive: on each call it lazily sweeps
// stale entries, returns a live entry for the exact argument key without
// invoking the underlying fetch, and otherwise fetches, stores the
// result with its insertion time, and returns it. Entries are never
// invalidated except by age.
//
// Two store backends are provided. The in-process memory store is the
// default and keeps nothing between runs. The Redis store lets several
// processes share one cache; expiry is delegated to Redis TTLs.
//
// Caching here is purely a politeness optimization against the
// rate-limited endpoint. It is toggleable at runtime: the client
// installs or removes the wrapper in front of its fetch primitive.
package cache
