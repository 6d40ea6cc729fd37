package relay

import "errors"

var (
	// ErrMissingIdentity is returned when a connection presents no identity
	// at handshake time. The connection is rejected, never retried.
	ErrMissingIdentity = errors.New("missing identity")

	// ErrConnectionExists is returned when a connection ID is admitted twice.
	ErrConnectionExists = errors.New("connection already admitted")

	// ErrUnknownConnection is returned for operations on a connection the
	// registry does not track.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrInvalidPayload is returned when a send request is structurally
	// malformed. Reported to the sender only; nothing is broadcast.
	ErrInvalidPayload = errors.New("invalid message payload")

	// ErrPersistenceFailure is returned when the store write fails. The
	// message is reported to the sender as a delivery failure and is never
	// broadcast: no receiver may observe a message that was not durably
	// persisted first.
	ErrPersistenceFailure = errors.New("failed to persist message")
)
