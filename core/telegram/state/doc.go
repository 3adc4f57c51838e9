// Package state keeps per-user conversation state in memory.
//
// A Store holds at most one value per user. Set overwrites, it never merges.
// Entries expire after the configured TTL; expired entries read as absent and
// are removed by Sweep or by the background loop started with Run. Nothing is
// persisted, so a restart drops every in-flight conversation.
package state
