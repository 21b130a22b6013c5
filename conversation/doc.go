// Package conversation persists per-session bounded message logs on top of
// the cache store's "conversation" namespace. The store is the sole mutator
// of a session's message sequence: appends are serialized per session so
// concurrent requests cannot lose updates, message counts are truncated to
// the newest MaxMessages, and resident sessions are evicted oldest-first in
// batches once MaxSessions is exceeded.
package conversation
