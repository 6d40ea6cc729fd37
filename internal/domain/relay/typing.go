package relay

// TypingStart broadcasts an ephemeral typing-started signal to every other
// member of the room. The issuing connection never receives its own signal.
func (s *Service) TypingStart(conn Conn, chatID, userID string) {
	s.broadcastTyping(conn, chatID, userID, true)
}

// TypingEnd broadcasts a typing-stopped signal. Delivery is best-effort: a
// dropped typing_end can leave receivers showing a stale indicator, which is
// accepted degraded behavior for ephemeral state.
func (s *Service) TypingEnd(conn Conn, chatID, userID string) {
	s.broadcastTyping(conn, chatID, userID, false)
}

func (s *Service) broadcastTyping(from Conn, chatID, userID string, isTyping bool) {
	ev := Event{
		Type: EventPartnerTyping,
		Data: TypingPayload{ChatID: chatID, UserID: userID, IsTyping: isTyping},
	}
	for _, member := range s.state.RoomMembers(chatID) {
		if member.Conn.ID() == from.ID() {
			continue
		}
		s.deliver(member.Conn, ev)
	}
}
