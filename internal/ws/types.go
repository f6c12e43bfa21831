package ws

const (
	// client - server
	MsgCreate = "create"
	MsgJoin   = "join"
	MsgReveal = "reveal"

	// server - client
	MsgReady    = "ready"
	MsgCreated  = "created"
	MsgMatched  = "matched"
	MsgState    = "state"
	MsgCoinflip = "coinflip"
	MsgResult   = "result"
	MsgError    = "error"
)
