package wsgateway

import (
	"context"
	"encoding/json"
	"errors"

	"nexuschat/chat-api/internal/domain/relay"
	"nexuschat/chat-api/internal/infrastructure/metrics"
)

// Frame is an inbound client intent.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound intent kinds. Names are part of the wire protocol.
const (
	IntentJoinChat     = "join_chat"
	IntentLeaveChat    = "leave_chat"
	IntentTypingStart  = "typing_start"
	IntentTypingEnd    = "typing_end"
	IntentSendMessage  = "send_message"
	IntentCallStart    = "call_start"
	IntentCallAnswer   = "call_answer"
	IntentICECandidate = "ice_candidate"
	IntentCallEnd      = "call_end"
)

type intentHandler func(ctx context.Context, c *Client, data json.RawMessage)

// intentTable maps each intent kind to its handler. Registered once at
// package init; unknown intents are counted and ignored.
var intentTable = map[string]intentHandler{
	IntentJoinChat:     handleJoinChat,
	IntentLeaveChat:    handleLeaveChat,
	IntentTypingStart:  handleTypingStart,
	IntentTypingEnd:    handleTypingEnd,
	IntentSendMessage:  handleSendMessage,
	IntentCallStart:    handleCallStart,
	IntentCallAnswer:   handleCallAnswer,
	IntentICECandidate: handleICECandidate,
	IntentCallEnd:      handleCallEnd,
}

func (g *Gateway) dispatch(ctx context.Context, c *Client, frame Frame) {
	handler, ok := intentTable[frame.Type]
	if !ok {
		metrics.IntentsReceived.WithLabelValues("unknown").Inc()
		c.log.Debug().Str("intent", frame.Type).Msg("unknown intent ignored")
		return
	}
	metrics.IntentsReceived.WithLabelValues(frame.Type).Inc()
	handler(ctx, c, frame.Data)
}

type chatRef struct {
	ChatID string `json:"chatId"`
}

func handleJoinChat(_ context.Context, c *Client, data json.RawMessage) {
	ref, ok := decodeChatRef(c, data)
	if !ok {
		return
	}
	if err := c.gateway.relay.Join(c, ref.ChatID); err != nil {
		c.log.Warn().Err(err).Str("chat_id", ref.ChatID).Msg("join failed")
	}
}

func handleLeaveChat(_ context.Context, c *Client, data json.RawMessage) {
	ref, ok := decodeChatRef(c, data)
	if !ok {
		return
	}
	if err := c.gateway.relay.Leave(c, ref.ChatID); err != nil {
		c.log.Warn().Err(err).Str("chat_id", ref.ChatID).Msg("leave failed")
	}
}

func handleTypingStart(_ context.Context, c *Client, data json.RawMessage) {
	if ref, ok := decodeChatRef(c, data); ok {
		c.gateway.relay.TypingStart(c, ref.ChatID, c.identity)
	}
}

func handleTypingEnd(_ context.Context, c *Client, data json.RawMessage) {
	if ref, ok := decodeChatRef(c, data); ok {
		c.gateway.relay.TypingEnd(c, ref.ChatID, c.identity)
	}
}

// handleSendMessage relays a chat message. Failures are reported to the
// sender only; the client owns retry and backoff.
func handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	var input relay.SendMessageInput
	if err := json.Unmarshal(data, &input); err != nil {
		c.sendError("invalid send_message payload")
		return
	}

	if _, err := c.gateway.relay.SendMessage(ctx, input); err != nil {
		switch {
		case errors.Is(err, relay.ErrInvalidPayload):
			c.sendError("invalid send_message payload")
		case errors.Is(err, relay.ErrPersistenceFailure):
			c.sendError("failed to send message")
		default:
			c.sendError("failed to send message")
		}
	}
}

type callStartIntent struct {
	To    string          `json:"to"`
	Offer json.RawMessage `json:"offer"`
	Type  string          `json:"type"`
}

func handleCallStart(_ context.Context, c *Client, data json.RawMessage) {
	var intent callStartIntent
	if err := json.Unmarshal(data, &intent); err != nil || intent.To == "" {
		return
	}
	c.gateway.relay.CallStart(intent.To, c.identity, intent.Offer, intent.Type)
}

type callAnswerIntent struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

func handleCallAnswer(_ context.Context, c *Client, data json.RawMessage) {
	var intent callAnswerIntent
	if err := json.Unmarshal(data, &intent); err != nil || intent.To == "" {
		return
	}
	c.gateway.relay.CallAnswer(intent.To, c.identity, intent.Answer)
}

type iceCandidateIntent struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

func handleICECandidate(_ context.Context, c *Client, data json.RawMessage) {
	var intent iceCandidateIntent
	if err := json.Unmarshal(data, &intent); err != nil || intent.To == "" {
		return
	}
	c.gateway.relay.ICECandidate(intent.To, c.identity, intent.Candidate)
}

type callEndIntent struct {
	To string `json:"to"`
}

func handleCallEnd(_ context.Context, c *Client, data json.RawMessage) {
	var intent callEndIntent
	if err := json.Unmarshal(data, &intent); err != nil || intent.To == "" {
		return
	}
	c.gateway.relay.CallEnd(intent.To, c.identity)
}

func decodeChatRef(c *Client, data json.RawMessage) (chatRef, bool) {
	var ref chatRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.ChatID == "" {
		c.log.Debug().Msg("intent missing chatId")
		return chatRef{}, false
	}
	return ref, true
}

func (c *Client) sendError(message string) {
	_ = c.Deliver(relay.Event{
		Type: relay.EventMessageError,
		Data: relay.MessageErrorPayload{Error: message},
	})
}
