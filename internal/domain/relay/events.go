package relay

import "encoding/json"

// Event is an outbound frame pushed to a client connection.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Outbound event kinds. Names are part of the wire protocol.
const (
	EventReceiveMessage = "receive_message"
	EventMessageError   = "message_error"
	EventPartnerTyping  = "partner_typing"
	EventCallIncoming   = "call_incoming"
	EventCallAnswered   = "call_answered"
	EventICECandidate   = "ice_candidate"
	EventCallEnded      = "call_ended"
)

// TypingPayload is the body of a partner_typing event.
type TypingPayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// MessageErrorPayload is the body of a message_error event, delivered only to
// the sender of the failed message.
type MessageErrorPayload struct {
	Error string `json:"error"`
}

// CallIncomingPayload is the body of a call_incoming event.
type CallIncomingPayload struct {
	From     string          `json:"from"`
	Offer    json.RawMessage `json:"offer"`
	CallType string          `json:"type"`
}

// CallAnsweredPayload is the body of a call_answered event.
type CallAnsweredPayload struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

// ICECandidatePayload is the body of an ice_candidate event.
type ICECandidatePayload struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

// CallEndedPayload is the body of a call_ended event.
type CallEndedPayload struct {
	From string `json:"from"`
}

// Conn is a live client connection as seen by the relay. Deliver must not
// block; transports queue outbound events and report an error when the
// connection can no longer accept them.
type Conn interface {
	ID() string
	Deliver(ev Event) error
}
