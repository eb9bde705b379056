package protocol

import "encoding/json"

// Client -> server event types.
const (
	TypeJoinRoom    = "join-room"
	TypeLeaveRoom   = "leave-room"
	TypeSignal      = "signal"
	TypeSendMessage = "send-message"
	TypeToggleMedia = "toggle-media"
)

// Server -> client event types.
const (
	TypeConnected        = "connected"
	TypeRoomParticipants = "room-participants"
	TypeUserJoined       = "user-joined"
	TypeUserLeft         = "user-left"
	TypeNewMessage       = "new-message"
	TypeUserToggleMedia  = "user-toggle-media"
	TypeError            = "error"
)

// Media channels a participant can toggle.
const (
	ChannelAudio = "audio"
	ChannelVideo = "video"
)

// ValidChannel reports whether ch names a toggleable media channel.
func ValidChannel(ch string) bool {
	return ch == ChannelAudio || ch == ChannelVideo
}

// Error codes carried by error payloads.
const (
	CodeAlreadyJoined = "ALREADY_JOINED"
	CodeNotInRoom     = "NOT_IN_ROOM"
	CodeRoomFull      = "ROOM_FULL"
	CodeBadRequest    = "BAD_REQUEST"
)

// Envelope is the top-level wrapper for every websocket frame in both
// directions. Payload stays raw until the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal wraps a typed payload in an Envelope and encodes the frame.
func Marshal(msgType string, payload interface{}) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

// Participant is the public view of a room member, mirrored to every
// other member of the room.
type Participant struct {
	SessionID    string `json:"sessionId"`
	Username     string `json:"username"`
	AudioEnabled bool   `json:"audioEnabled"`
	VideoEnabled bool   `json:"videoEnabled"`
}

// Client -> server payloads

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type Signal struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

type SendMessage struct {
	Body string `json:"body"`
}

type ToggleMedia struct {
	Channel string `json:"channel"`
	Enabled bool   `json:"enabled"`
}

// Server -> client payloads

// Connected is the first frame on every connection. It carries the
// server-minted session identifier and the ICE servers clients should
// use for their peer connections.
type Connected struct {
	SessionID  string      `json:"sessionId"`
	ICEServers []ICEServer `json:"iceServers"`
}

type ICEServer struct {
	URLs []string `json:"urls"`
}

// RoomParticipants is the join reply: the room's prior members in join
// order, excluding the joiner. The joiner initiates negotiation with
// each of them.
type RoomParticipants struct {
	Participants []Participant `json:"participants"`
}

type UserJoined struct {
	Participant Participant `json:"participant"`
}

type UserLeft struct {
	SessionID string `json:"sessionId"`
}

// ForwardedSignal is a relayed negotiation payload. The payload is
// opaque to the server.
type ForwardedSignal struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type NewMessage struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
	SentAt int64  `json:"sentAt"`
}

type UserToggleMedia struct {
	SessionID string `json:"sessionId"`
	Channel   string `json:"channel"`
	Enabled   bool   `json:"enabled"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
