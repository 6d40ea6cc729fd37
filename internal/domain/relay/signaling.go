package relay

import (
	"encoding/json"

	"nexuschat/chat-api/internal/infrastructure/metrics"
)

// Call signaling is pure store-and-forward: envelopes are delivered to every
// live connection of the target identity (multi-device ring) and silently
// dropped when the target has none. The relay holds no call state machine -
// a stray answer with no matching start is forwarded like any other envelope.
// Missed-call coverage for offline targets belongs to a separate notification
// path, not this relay.

// CallStart forwards a call offer to the target identity.
func (s *Service) CallStart(toID, fromID string, offer json.RawMessage, callType string) {
	s.forwardSignal(toID, Event{
		Type: EventCallIncoming,
		Data: CallIncomingPayload{From: fromID, Offer: offer, CallType: callType},
	})
}

// CallAnswer forwards a call answer to the target identity.
func (s *Service) CallAnswer(toID, fromID string, answer json.RawMessage) {
	s.forwardSignal(toID, Event{
		Type: EventCallAnswered,
		Data: CallAnsweredPayload{From: fromID, Answer: answer},
	})
}

// ICECandidate forwards a connectivity candidate. Candidates between a given
// sender and receiver are forwarded in the order they arrive; there is no
// cap on their count.
func (s *Service) ICECandidate(toID, fromID string, candidate json.RawMessage) {
	s.forwardSignal(toID, Event{
		Type: EventICECandidate,
		Data: ICECandidatePayload{From: fromID, Candidate: candidate},
	})
}

// CallEnd forwards a hang-up to the target identity.
func (s *Service) CallEnd(toID, fromID string) {
	s.forwardSignal(toID, Event{
		Type: EventCallEnded,
		Data: CallEndedPayload{From: fromID},
	})
}

func (s *Service) forwardSignal(toID string, ev Event) {
	conns := s.state.IdentityConns(toID)
	if len(conns) == 0 {
		metrics.RecordSignal(ev.Type, false)
		s.log.Debug().Str("to", toID).Str("event", ev.Type).Msg("signal dropped, target offline")
		return
	}
	for _, conn := range conns {
		s.deliver(conn, ev)
	}
	metrics.RecordSignal(ev.Type, true)
}
