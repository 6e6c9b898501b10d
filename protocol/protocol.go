package protocol

import (
	"encoding/json"
)

const (
	MsgHello        = "hello"
	MsgInput        = "input"
	MsgWelcome      = "welcome"
	MsgState        = "state"
	MsgDamage       = "damage"
	MsgDeath        = "death"
	MsgWaveStart    = "waveStart"
	MsgWaveComplete = "waveComplete"
	MsgError        = "error"
)

const Version = 1

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
