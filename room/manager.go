package room

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// RoomInfo is returned by the API for the server list.
type RoomInfo struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Wave    int    `json:"wave"`
	Running bool   `json:"running"`
	Seed    int64  `json:"seed"`
}

// Info reports the room's public status. Safe from any goroutine.
func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Code:    r.Code,
		Players: r.NumPlayers(),
		Wave:    r.Wave(),
		Running: r.Status() == StatusRunning,
		Seed:    r.seed,
	}
}

// Manager holds multiple rooms by code. Rooms are created on first join or via CreateRoom,
// and removed when the last player leaves.
type Manager struct {
	mu    deadlock.RWMutex
	rooms map[string]*Room
	base  Options
	log   *zap.Logger
}

// NewManager creates rooms from base. A zero base.Seed gives every room a
// random seed.
func NewManager(base Options) *Manager {
	if base.Logger == nil {
		base.Logger = zap.NewNop()
	}
	return &Manager{
		rooms: make(map[string]*Room),
		base:  base,
		log:   base.Logger,
	}
}

// GetOrCreateRoom returns the room for the given code, creating it if needed.
func (m *Manager) GetOrCreateRoom(code string) (*Room, error) {
	if code == "" {
		return nil, fmt.Errorf("empty room code")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		return r, nil
	}
	return m.startRoom(code)
}

// Get returns an existing room.
func (m *Manager) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// startRoom builds and starts a room. Callers hold m.mu.
func (m *Manager) startRoom(code string) (*Room, error) {
	opts := m.base
	opts.Code = code
	if opts.Seed == 0 {
		opts.Seed = randomSeed()
	}
	opts.OnEmpty = m.removeRoom
	r, err := New(opts)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	if err := r.Start(); err != nil {
		return nil, fmt.Errorf("start room %s: %w", code, err)
	}
	m.rooms[code] = r
	m.log.Info("room created", zap.String("room", code), zap.Int64("seed", opts.Seed))
	return r, nil
}

func (m *Manager) removeRoom(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[code]; ok {
		r.Stop()
		delete(m.rooms, code)
		m.log.Info("room removed", zap.String("room", code))
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateRoom generates a unique 6-char code, creates the room, and returns the code.
func (m *Manager) CreateRoom() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.rooms[code]; exists {
			continue
		}
		if _, err := m.startRoom(code); err != nil {
			return "", err
		}
		return code, nil
	}
}

// ListRooms returns all active rooms with code and player count.
func (m *Manager) ListRooms() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Info())
	}
	return out
}

// Shutdown stops every room and waits for their goroutines to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for code, r := range m.rooms {
		rooms = append(rooms, r)
		delete(m.rooms, code)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
		<-r.Done()
	}
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}

func randomSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	if s := int64(binary.LittleEndian.Uint64(b[:]) >> 1); s != 0 {
		return s
	}
	return 1
}
