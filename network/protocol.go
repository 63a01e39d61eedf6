package network

// Client -> server.
const (
	MsgTypeHeartbeat = 1

	MsgTypeNewWord    = 101
	MsgTypeToggleWord = 102
	MsgTypeRevealWord = 103

	MsgTypePointerDown  = 201
	MsgTypePointerMove  = 202
	MsgTypePointerUp    = 203
	MsgTypePointerLeave = 204
	MsgTypeClearCanvas  = 205
	MsgTypeResize       = 206
	MsgTypeSelectColor  = 207
	MsgTypeStrokeWidth  = 208
	MsgTypeToggleEraser = 209

	MsgTypeRoundStart  = 301
	MsgTypeRoundPause  = 302
	MsgTypeRoundToggle = 303
	MsgTypeRoundReset  = 304

	MsgTypeSubmitGuess  = 401
	MsgTypeClearGuesses = 402

	MsgTypeTimerDuration = 501
	MsgTypeTimerStart    = 502
	MsgTypeTimerPause    = 503
	MsgTypeTimerReset    = 504
)

// Server -> client.
const (
	MsgTypeSnapshot = 601
	MsgTypeRender   = 602
	MsgTypeTimer    = 603
)

// HeaderSize is the 2-byte message id plus the 4-byte body length.
const HeaderSize = 6

// MaxBodySize bounds a single packet body.
const MaxBodySize = 1 << 20
