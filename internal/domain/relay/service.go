package relay

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/domain/chat"
	"nexuschat/chat-api/internal/infrastructure/metrics"
)

// Service is the realtime relay engine: session admission, room membership,
// message persist-and-broadcast, typing propagation, and call-signaling
// forwarding. All retry policy lives on the client; the service never retries
// a failed operation.
type Service struct {
	state    *State
	store    chat.Store
	validate *validator.Validate
	log      zerolog.Logger
}

// NewService creates the relay engine around an injected registry and store.
func NewService(state *State, store chat.Store, log zerolog.Logger) *Service {
	return &Service{
		state:    state,
		store:    store,
		validate: validator.New(),
		log:      log.With().Str("component", "relay").Logger(),
	}
}

// State exposes the registry for transports that need membership snapshots.
func (s *Service) State() *State {
	return s.state
}

// Admit registers an authenticated connection. The connection is subscribed
// to its identity's private channel and the user's presence is recorded as
// online. The presence write is advisory: failures are logged, never retried,
// and never fail the admit.
func (s *Service) Admit(ctx context.Context, conn Conn, identity string) error {
	first, err := s.state.Admit(conn, identity)
	if err != nil {
		return err
	}

	metrics.RecordConnect(first)
	s.log.Info().
		Str("conn_id", conn.ID()).
		Str("user_id", identity).
		Bool("first_connection", first).
		Msg("connection admitted")

	if err := s.store.UpdateUserPresence(ctx, identity, chat.PresenceOnline, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity).Msg("presence update failed")
	}
	return nil
}

// Release tears down a connection: membership in every joined room is dropped
// and, if this was the identity's last live connection, presence is recorded
// as offline. Best-effort on the presence write; a disconnect never fails.
func (s *Service) Release(ctx context.Context, conn Conn) {
	identity, last, err := s.state.Release(conn)
	if err != nil {
		return
	}

	metrics.RecordDisconnect(last)
	s.log.Info().
		Str("conn_id", conn.ID()).
		Str("user_id", identity).
		Bool("last_connection", last).
		Msg("connection released")

	if !last {
		return
	}
	if err := s.store.UpdateUserPresence(ctx, identity, chat.PresenceOffline, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity).Msg("presence update failed")
	}
}

// Join subscribes a connection to a chat room. Idempotent. Membership is
// per-connection: each of a user's devices joins independently.
func (s *Service) Join(conn Conn, chatID string) error {
	if err := s.state.Join(conn, chatID); err != nil {
		return err
	}
	s.log.Debug().Str("conn_id", conn.ID()).Str("chat_id", chatID).Msg("joined chat")
	return nil
}

// Leave unsubscribes a connection from a chat room. Idempotent.
func (s *Service) Leave(conn Conn, chatID string) error {
	if err := s.state.Leave(conn, chatID); err != nil {
		return err
	}
	s.log.Debug().Str("conn_id", conn.ID()).Str("chat_id", chatID).Msg("left chat")
	return nil
}

// deliver pushes an event to a single connection, logging slow-consumer
// failures without interrupting the fan-out.
func (s *Service) deliver(conn Conn, ev Event) bool {
	if err := conn.Deliver(ev); err != nil {
		s.log.Warn().Err(err).Str("conn_id", conn.ID()).Str("event", ev.Type).Msg("delivery failed")
		return false
	}
	return true
}
