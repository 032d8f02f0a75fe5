// Package msgsource adapts the inbound phone transports and stdin into one
// stream of raw frames for the watch loop.
package msgsource

import "github.com/tinytelemetry/cards/internal/model"

// Source is a unified interface for all inbound message sources.
type Source interface {
	Lines() <-chan model.Envelope // read-only channel of raw frames
	Stop()                        // graceful shutdown
	Name() string                 // "phone", "stdin"
}
