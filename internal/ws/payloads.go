package ws

import "encoding/json"

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Incoming is the raw client frame; the payload is decoded per type.
type Incoming struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// client → server
type CreatePayload struct {
	Stake      int64  `json:"stake"`
	BombCount  int    `json:"bomb_count"`
	ClientSeed string `json:"client_seed"`
	VsBot      bool   `json:"vs_bot"`
}

type JoinPayload struct {
	RoomID string `json:"room_id"`
}

type RevealPayload struct {
	Tile int `json:"tile"`
}

// server → client
type CreatedPayload struct {
	RoomID     string `json:"room_id"`
	Commitment string `json:"commitment"`
}

type MatchedPayload struct {
	RoomID     string `json:"room_id"`
	OpponentID int64  `json:"opponent_id"`
}

type CoinflipPayload struct {
	Value  float64 `json:"value"`
	Winner string  `json:"winner"`
}

type ResultPayload struct {
	You    string                 `json:"you"` // win | lose
	Reason string                 `json:"reason"`
	State  map[string]interface{} `json:"state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	return json.Unmarshal(raw, v)
}
