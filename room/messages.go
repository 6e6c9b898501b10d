package room

import (
	"math"

	"swarm/game"
	"swarm/protocol"
)

type Conn interface {
	Send([]byte) error
	Close() error
}

// BinaryConn is implemented by connections that accept binary frames. Rooms
// configured for msgpack snapshots use it when available.
type BinaryConn interface {
	SendBinary([]byte) error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	PlayerID string
	Err      error
}

// Input: latest input for a player
type Input struct {
	PlayerID string
	Input    game.Input
}

// Leave: issued on disconnect
type Leave struct {
	PlayerID string
}

// Bonus releases extra enemies into the running game. The HTTP API submits it
// for POST /api/rooms/{code}/bonus.
type Bonus struct {
	Type  game.EnemyType
	Count int
}

// InputFromWire converts a client input message. Move axes are clamped to
// [-1, 1]; the simulation normalizes direction itself.
func InputFromWire(in protocol.Input) game.Input {
	out := game.Input{
		MoveX:       clampAxis(in.MoveX),
		MoveY:       clampAxis(in.MoveY),
		AimX:        in.AimX,
		AimY:        in.AimY,
		Shooting:    in.Shooting,
		Reload:      in.Reload,
		Interact:    in.Interact,
		Dash:        in.Dash,
		Thermobaric: in.Thermobaric,
		Sequence:    in.Sequence,
	}
	if in.WeaponSlot != nil {
		out.WeaponSlot = *in.WeaponSlot
	}
	return out
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(-1, min(1, v))
}
