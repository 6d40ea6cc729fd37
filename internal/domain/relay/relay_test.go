package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nexuschat/chat-api/internal/domain/chat"
)

// fakeConn records every event delivered to it.
type fakeConn struct {
	id   string
	mu   sync.Mutex
	evs  []Event
	fail bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Deliver(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send buffer full")
	}
	c.evs = append(c.evs, ev)
	return nil
}

func (c *fakeConn) events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.evs))
	copy(out, c.evs)
	return out
}

func (c *fakeConn) eventsOfType(kind string) []Event {
	var out []Event
	for _, ev := range c.events() {
		if ev.Type == kind {
			out = append(out, ev)
		}
	}
	return out
}

type presenceWrite struct {
	userID string
	status chat.PresenceStatus
}

// fakeStore is an in-memory chat.Store that assigns IDs at insert time.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	inserted  []*chat.Message
	presence  []presenceWrite
	activity  []string
	insertErr error
	insertCtx context.Context
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) InsertMessage(ctx context.Context, msg chat.NewMessage) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCtx = ctx
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	stored := &chat.Message{
		ID:        "msg_" + string(rune('0'+f.nextID)),
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Type:      msg.Type,
		MediaURL:  msg.MediaURL,
		ReplyToID: msg.ReplyToID,
		Status:    chat.MessageStatusSent,
		CreatedAt: time.Now().UTC(),
	}
	f.inserted = append(f.inserted, stored)
	return stored, nil
}

func (f *fakeStore) TouchChatActivity(ctx context.Context, chatID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, chatID)
	return nil
}

func (f *fakeStore) UpdateUserPresence(ctx context.Context, userID string, status chat.PresenceStatus, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence = append(f.presence, presenceWrite{userID: userID, status: status})
	return nil
}

func (f *fakeStore) ListChatsForUser(ctx context.Context, userID string) ([]*chat.Chat, error) {
	return nil, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, chatID string, limit int) ([]*chat.Message, error) {
	return nil, nil
}

func (f *fakeStore) presenceWrites() []presenceWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]presenceWrite, len(f.presence))
	copy(out, f.presence)
	return out
}

func newTestService(store chat.Store) *Service {
	return NewService(NewState(zerolog.Nop()), store, zerolog.Nop())
}

func TestAdmitRequiresIdentity(t *testing.T) {
	svc := newTestService(newFakeStore())
	err := svc.Admit(context.Background(), newFakeConn("c1"), "")
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("Admit() error = %v, want ErrMissingIdentity", err)
	}
}

func TestAdmitRejectsDuplicateConnection(t *testing.T) {
	svc := newTestService(newFakeStore())
	conn := newFakeConn("c1")
	if err := svc.Admit(context.Background(), conn, "alice"); err != nil {
		t.Fatalf("Admit() error = %v", err)
	}
	if err := svc.Admit(context.Background(), conn, "alice"); !errors.Is(err, ErrConnectionExists) {
		t.Fatalf("Admit() second error = %v, want ErrConnectionExists", err)
	}
}

func TestPresenceTransitions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	if err := svc.Admit(ctx, c1, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, c2, "alice"); err != nil {
		t.Fatal(err)
	}

	// Releasing the first device must not mark the user offline.
	svc.Release(ctx, c1)
	for _, w := range store.presenceWrites() {
		if w.status == chat.PresenceOffline {
			t.Fatalf("user marked offline while a connection is still live")
		}
	}

	svc.Release(ctx, c2)
	writes := store.presenceWrites()
	lastWrite := writes[len(writes)-1]
	if lastWrite.status != chat.PresenceOffline || lastWrite.userID != "alice" {
		t.Fatalf("last presence write = %+v, want alice offline", lastWrite)
	}
}

func TestSendMessageDeliversToMembers(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	outsider := newFakeConn("x")
	for conn, id := range map[*fakeConn]string{a: "alice", b: "bob", outsider: "eve"} {
		if err := svc.Admit(ctx, conn, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(b, "r1"); err != nil {
		t.Fatal(err)
	}

	msg, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.ID == "" {
		t.Fatal("message ID was not assigned by the store")
	}
	if msg.Status != chat.MessageStatusSent {
		t.Fatalf("message status = %q, want sent", msg.Status)
	}

	// Both members, including the sender's own connection, get exactly one
	// copy of the stored message.
	for name, conn := range map[string]*fakeConn{"sender": a, "receiver": b} {
		got := conn.eventsOfType(EventReceiveMessage)
		if len(got) != 1 {
			t.Fatalf("%s received %d copies, want 1", name, len(got))
		}
		delivered, ok := got[0].Data.(*chat.Message)
		if !ok {
			t.Fatalf("%s event payload is %T, want *chat.Message", name, got[0].Data)
		}
		if delivered.ID != msg.ID || delivered.Content != "hi" {
			t.Fatalf("%s got %+v, want stored copy %+v", name, delivered, msg)
		}
	}

	if got := outsider.eventsOfType(EventReceiveMessage); len(got) != 0 {
		t.Fatalf("non-member received %d messages, want 0", len(got))
	}
}

func TestSendMessageAfterLeaveDeliversNothing(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	if err := svc.Admit(ctx, a, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, b, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(b, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Leave(b, "r1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	}); err != nil {
		t.Fatal(err)
	}

	if got := b.eventsOfType(EventReceiveMessage); len(got) != 0 {
		t.Fatalf("left member received %d messages, want 0", len(got))
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	if err := svc.Admit(ctx, a, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, b, "bob"); err != nil {
		t.Fatal(err)
	}
	// Double join must leave a single membership entry.
	for i := 0; i < 2; i++ {
		if err := svc.Join(b, "r1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	}); err != nil {
		t.Fatal(err)
	}

	if got := b.eventsOfType(EventReceiveMessage); len(got) != 1 {
		t.Fatalf("double-joined member received %d copies, want exactly 1", len(got))
	}
}

func TestSendMessageValidation(t *testing.T) {
	tests := []struct {
		name  string
		input SendMessageInput
	}{
		{"missing chat id", SendMessageInput{SenderID: "alice", Content: "hi", Type: "text"}},
		{"missing sender", SendMessageInput{ChatID: "r1", Content: "hi", Type: "text"}},
		{"missing content", SendMessageInput{ChatID: "r1", SenderID: "alice", Type: "text"}},
		{"missing type", SendMessageInput{ChatID: "r1", SenderID: "alice", Content: "hi"}},
		{"unknown type", SendMessageInput{ChatID: "r1", SenderID: "alice", Content: "hi", Type: "hologram"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store)
			_, err := svc.SendMessage(context.Background(), tt.input)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("SendMessage() error = %v, want ErrInvalidPayload", err)
			}
			if len(store.inserted) != 0 {
				t.Fatal("invalid payload must not reach the store")
			}
		})
	}
}

func TestPersistenceFailureIsNeverBroadcast(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("store unavailable")
	svc := newTestService(store)
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	if err := svc.Admit(ctx, a, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, b, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(b, "r1"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	})
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("SendMessage() error = %v, want ErrPersistenceFailure", err)
	}

	for name, conn := range map[string]*fakeConn{"sender": a, "receiver": b} {
		if got := conn.eventsOfType(EventReceiveMessage); len(got) != 0 {
			t.Fatalf("%s received %d messages despite failed persistence", name, len(got))
		}
	}
}

func TestSendMessageSurvivesCallerCancellation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	baseCtx := context.Background()

	a := newFakeConn("a")
	if err := svc.Admit(baseCtx, a, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(baseCtx)
	cancel() // caller disconnected before the write

	if _, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	}); err != nil {
		t.Fatalf("SendMessage() error = %v, want in-flight write to complete", err)
	}
	if store.insertCtx.Err() != nil {
		t.Fatal("persistence context was cancelled by the caller's disconnect")
	}
}

func TestTypingExcludesSender(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	c := newFakeConn("c")
	for conn, id := range map[*fakeConn]string{a: "alice", b: "bob", c: "carol"} {
		if err := svc.Admit(ctx, conn, id); err != nil {
			t.Fatal(err)
		}
		if err := svc.Join(conn, "r1"); err != nil {
			t.Fatal(err)
		}
	}

	svc.TypingStart(a, "r1", "alice")

	if got := a.eventsOfType(EventPartnerTyping); len(got) != 0 {
		t.Fatalf("sender received its own typing signal")
	}
	for name, conn := range map[string]*fakeConn{"b": b, "c": c} {
		got := conn.eventsOfType(EventPartnerTyping)
		if len(got) != 1 {
			t.Fatalf("%s received %d typing signals, want 1", name, len(got))
		}
		payload := got[0].Data.(TypingPayload)
		if !payload.IsTyping || payload.UserID != "alice" || payload.ChatID != "r1" {
			t.Fatalf("typing payload = %+v", payload)
		}
	}

	svc.TypingEnd(a, "r1", "alice")
	payload := b.eventsOfType(EventPartnerTyping)[1].Data.(TypingPayload)
	if payload.IsTyping {
		t.Fatal("typing_end delivered isTyping=true")
	}
}

func TestCallSignalingMultiDevice(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	caller := newFakeConn("caller")
	phone := newFakeConn("phone")
	laptop := newFakeConn("laptop")
	if err := svc.Admit(ctx, caller, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, phone, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, laptop, "bob"); err != nil {
		t.Fatal(err)
	}

	svc.CallStart("bob", "alice", []byte(`{"sdp":"offer"}`), "video")

	// Every live device of the target rings exactly once.
	for name, conn := range map[string]*fakeConn{"phone": phone, "laptop": laptop} {
		got := conn.eventsOfType(EventCallIncoming)
		if len(got) != 1 {
			t.Fatalf("%s received %d call_incoming events, want 1", name, len(got))
		}
		payload := got[0].Data.(CallIncomingPayload)
		if payload.From != "alice" || payload.CallType != "video" {
			t.Fatalf("call payload = %+v", payload)
		}
	}
	if got := caller.eventsOfType(EventCallIncoming); len(got) != 0 {
		t.Fatal("caller received its own offer")
	}

	svc.CallAnswer("alice", "bob", []byte(`{"sdp":"answer"}`))
	if got := caller.eventsOfType(EventCallAnswered); len(got) != 1 {
		t.Fatalf("caller received %d call_answered events, want 1", len(got))
	}

	svc.ICECandidate("alice", "bob", []byte(`{"candidate":"c0"}`))
	svc.ICECandidate("alice", "bob", []byte(`{"candidate":"c1"}`))
	candidates := caller.eventsOfType(EventICECandidate)
	if len(candidates) != 2 {
		t.Fatalf("caller received %d candidates, want 2", len(candidates))
	}
	// Order-preserving per sender-receiver pair.
	first := candidates[0].Data.(ICECandidatePayload)
	if string(first.Candidate) != `{"candidate":"c0"}` {
		t.Fatalf("candidates out of order: first = %s", first.Candidate)
	}

	svc.CallEnd("bob", "alice")
	if got := phone.eventsOfType(EventCallEnded); len(got) != 1 {
		t.Fatalf("phone received %d call_ended events, want 1", len(got))
	}
}

func TestCallSignalingSilentDropWhenOffline(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	caller := newFakeConn("caller")
	if err := svc.Admit(ctx, caller, "alice"); err != nil {
		t.Fatal(err)
	}

	// No live connection for bob: envelopes vanish, no error surfaces.
	svc.CallStart("bob", "alice", []byte(`{}`), "audio")
	svc.CallEnd("bob", "alice")

	if got := caller.events(); len(got) != 0 {
		t.Fatalf("caller received %d events for an offline target, want 0", len(got))
	}
}

func TestReleaseDropsRoomSubscriptions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	a := newFakeConn("a")
	b := newFakeConn("b")
	if err := svc.Admit(ctx, a, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Admit(ctx, b, "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(a, "r1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Join(b, "r1"); err != nil {
		t.Fatal(err)
	}

	svc.Release(ctx, b)

	if _, err := svc.SendMessage(ctx, SendMessageInput{
		ChatID: "r1", SenderID: "alice", Content: "hi", Type: "text",
	}); err != nil {
		t.Fatal(err)
	}
	if got := b.eventsOfType(EventReceiveMessage); len(got) != 0 {
		t.Fatal("released connection still received a room broadcast")
	}
	if members := svc.State().RoomMembers("r1"); len(members) != 1 {
		t.Fatalf("room has %d members after release, want 1", len(members))
	}
}
