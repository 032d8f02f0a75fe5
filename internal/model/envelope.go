package model

// Envelope carries one raw message frame with source metadata.
// It is the transport contract between message sources and the watch loop.
type Envelope struct {
	Source string
	Line   string
}
