package realtime

import "time"

// Frame types the server originates outside of event delivery.
const (
	FrameConnectionEstablished = "connection_established"
	FramePing                  = "ping"
	FramePong                  = "pong"
)

// Client message types accepted on the inbound side.
const (
	clientPing        = "ping"
	clientSubscribe   = "subscribe"
	clientUnsubscribe = "unsubscribe"
)

// Frame is the envelope for everything written to a client.
type Frame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewFrame(frameType string, data any) *Frame {
	return &Frame{
		Type:      frameType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// clientMessage is the inbound frame shape. Anything that does not decode
// into this, or carries an unknown type, is logged and ignored.
type clientMessage struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}
