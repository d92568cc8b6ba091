// Package timeouts holds the HTTP server limits of libadmin.
package timeouts

import "time"

// ReadHeader limits how long the server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long in-flight requests may finish on exit.
const Shutdown = 5 * time.Second

// Ping caps the startup reachability check of the backend.
const Ping = 3 * time.Second

// Dictionary caps how long a page waits for its dictionary before rendering
// with placeholders.
const Dictionary = time.Second
