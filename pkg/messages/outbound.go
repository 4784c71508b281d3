package messages

// Outbound event names
const (
	EventConnected = "CONNECTED"
	EventAck       = "ACK"
	EventStateSync = "STATE_SYNC"
	EventNotice    = "NOTICE"
	EventError     = "ERROR"
)

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

// AckPayload answers one inbound request. Result is set on success, Error otherwise.
type AckPayload struct {
	RequestID string      `json:"requestId,omitempty"`
	OK        bool        `json:"ok"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NoticePayload is a human-readable event in a session, such as a duel starting
type NoticePayload struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Ack builds a successful ACK
func Ack(requestID string, result interface{}) OutboundMessage {
	return OutboundMessage{
		Event:   EventAck,
		Payload: AckPayload{RequestID: requestID, OK: true, Result: result},
	}
}

// Nack builds a failed ACK
func Nack(requestID string, err error) OutboundMessage {
	return OutboundMessage{
		Event:   EventAck,
		Payload: AckPayload{RequestID: requestID, Error: err.Error()},
	}
}
