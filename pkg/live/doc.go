// Package live pushes settled patch lists to connected clients over
// WebSocket. Each flush becomes one JSON frame with a monotonic sequence
// number; a client that misses frames reloads rather than resyncs. The
// feed is a renderer collaborator: wire Feed.Broadcast as the root's
// RendererFunc.
package live
