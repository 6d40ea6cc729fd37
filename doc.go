// Package chatapi implements the chat-api service, a realtime chat relay.
//
// The service provides:
//   - WebSocket sessions with multi-device identity channels
//   - Chat room membership with persist-then-broadcast message relay
//   - Typing indicator propagation
//   - WebRTC call-signaling forwarding (offer, answer, ICE, hang-up)
//   - Chat and message history over REST, backed by Postgres
//   - Presigned S3 uploads for media attachments
//   - JWT authentication via JWKS
package chatapi
