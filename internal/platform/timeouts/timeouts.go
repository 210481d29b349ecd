// Package timeouts defines shared timeout constants used across rollbot
// commands so that HTTP, gRPC, storage and Slack calls stay bounded.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing a gRPC peer.
const GRPCDial = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// SlackPost caps one outbound chat.postMessage call. Slack expects a slash
// command reply within three seconds.
const SlackPost = 2500 * time.Millisecond

// StoreOperation caps one pool load-modify-save unit of work.
const StoreOperation = 2 * time.Second
