package domain

import "encoding/json"

// WebSocket event types from client.
const (
	MsgTypeJoinMultipleTripRooms = "joinMultipleTripRooms"
	MsgTypeJoinGroup             = "joinGroup"
	MsgTypeSendMessage           = "sendMessage"
	MsgTypeLeaveTripRoom         = "leaveTripRoom"
	MsgTypePing                  = "ping"
)

// WebSocket event types to client.
const (
	MsgTypeJoinRoomSuccess = "joinRoomSuccess"
	MsgTypeJoinRoomError   = "joinRoomError"
	MsgTypeTripRoomsJoined = "tripRoomsJoined"
	MsgTypeGroupJoined     = "groupJoined"
	MsgTypeUserJoinedGroup = "userJoinedGroup"
	MsgTypeMessageReceived = "messageReceived"
	MsgTypeTripRoomLeft    = "tripRoomLeft"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// Error codes
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeRoomNotFound     = "ROOM_NOT_FOUND"
	ErrCodePersistenceError = "PERSISTENCE_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// BaseMessage carries the discriminator every frame starts with.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type JoinMultipleTripRoomsMessage struct {
	Type    string   `json:"type"`
	TripIDs []string `json:"tripIds"`
}

type JoinGroupMessage struct {
	Type   string `json:"type"`
	TripID string `json:"tripId"`
	UserID string `json:"userId"`
}

// SendMessageMessage forwards MessageToSend verbatim; its shape is owned by clients.
type SendMessageMessage struct {
	Type          string          `json:"type"`
	User          string          `json:"user"`
	TripID        string          `json:"tripId"`
	MessageToSend json.RawMessage `json:"messageToSend"`
}

type LeaveTripRoomMessage struct {
	Type   string `json:"type"`
	TripID string `json:"tripId"`
}

// Server -> Client messages

type JoinRoomSuccessMessage struct {
	Type   string `json:"type"`
	TripID string `json:"tripId"`
}

type JoinRoomErrorMessage struct {
	Type   string `json:"type"`
	TripID string `json:"tripId"`
	Code   string `json:"code"`
	Error  string `json:"error"`
}

// JoinRoomResult is one slot of a bulk join acknowledgement.
type JoinRoomResult struct {
	TripID  string `json:"tripId"`
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

type TripRoomsJoinedMessage struct {
	Type      string           `json:"type"`
	Results   []JoinRoomResult `json:"results"`
	Joined    int              `json:"joined"`
	Requested int              `json:"requested"`
}

type GroupJoinedMessage struct {
	Type    string        `json:"type"`
	Members *TripSnapshot `json:"members"`
}

type UserJoinedGroupMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	TripID string `json:"tripId"`
}

type MessageReceivedMessage struct {
	Type    string          `json:"type"`
	TripID  string          `json:"tripId"`
	Message json.RawMessage `json:"message"`
}

type TripRoomLeftMessage struct {
	Type   string `json:"type"`
	TripID string `json:"tripId"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
