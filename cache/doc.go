// Package cache implements the TTL key/value store backing the chatbot's
// page-data and conversation namespaces. A Store is written against the
// core.Backend capability and degrades to safe no-ops (miss on read, false
// on write) whenever the backend is unreachable: the cache must never be a
// single point of failure for the surrounding chatbot.
//
// Expiry is enforced on read from a serialized envelope (value, createdAt,
// ttl) so behavior is identical across backends; backends with native TTL
// support get the ttl passed through as well. Expired entries are purged on
// next touch, and Sweep offers an optional idempotent bulk purge.
package cache
