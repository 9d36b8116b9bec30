// Package convert implements the background conversion protocol: a
// promise-like interface over a slow, singleton converter worker, addressed
// via correlated asynchronous messages with progress streaming and
// timeout-based cancellation.
package convert

import "context"

// Payload describes one conversion request.
type Payload struct {
	// SourcePath is a transient handle path to the artifact payload.
	SourcePath string
	// SourceType is the artifact's content type.
	SourceType string
	// TargetFormat names the output format (e.g. "mp3", "gif").
	TargetFormat string
	// Name is the source artifact's display name, used to derive the
	// converted artifact's name.
	Name string
}

// Result is a finished conversion, ready to be handed back to the storage
// tier as a new artifact.
type Result struct {
	Data        []byte
	ContentType string
	Name        string
}

// MessageType tags inbound worker messages.
type MessageType string

const (
	MessageProgress MessageType = "progress"
	MessageComplete MessageType = "complete"
	MessageError    MessageType = "error"
)

// Request is the tagged message sent to the worker. ID is the correlation
// id linking it to every later Message for this task.
type Request struct {
	ID      string
	Payload Payload
}

// Message is one inbound worker message. Progress is a fraction in [0,1].
type Message struct {
	Type     MessageType
	ID       string
	Progress float64
	Phase    string
	Result   *Result
	Error    string
}

// Worker is the opaque converter. Run consumes requests and emits
// correlated messages until ctx is cancelled or requests is closed; per
// request it sends zero or more progress messages and then exactly one
// complete or error message. Returning a non-nil error is a crash (or a
// failed startup) and rejects everything in flight.
type Worker interface {
	Run(ctx context.Context, requests <-chan Request, messages chan<- Message) error
}
