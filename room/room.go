package room

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"swarm/game"
	"swarm/mapgen"
	"swarm/protocol"
	"swarm/records"
)

var (
	ErrRoomFull    = errors.New("room is full")
	ErrRoomStopped = errors.New("room is stopped")
	ErrGameOver    = errors.New("game is over")
)

type Status int32

const (
	StatusIdle Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// Options configures a new room.
type Options struct {
	Code       string
	Seed       int64
	MapWidth   int
	MapHeight  int
	MaxPlayers int
	Game       game.Config
	// Binary sends snapshots and events as msgpack to connections that
	// support binary frames.
	Binary  bool
	Store   records.Storage
	Logger  *zap.Logger
	OnEmpty func(code string) // called when last player leaves
}

// Room owns one simulation. All state is touched only by the goroutine
// started in Start; other goroutines talk to it through Inbox.
type Room struct {
	Inbox chan any
	Code  string

	onEmpty    func(code string)
	seed       int64
	state      *game.State
	clients    map[string]Conn
	inputs     map[string]game.Input
	nextID     int
	maxPlayers int
	interval   time.Duration
	binary     bool
	store      records.Storage
	log        *zap.Logger

	status   atomic.Int32
	players  atomic.Int32
	wave     atomic.Int32
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New generates the room's map and builds its simulation. A tick rate that
// cannot be scheduled is an error.
func New(opts Options) (*Room, error) {
	if opts.Game.TickRate <= 0 || time.Second/time.Duration(opts.Game.TickRate) <= 0 {
		return nil, fmt.Errorf("room %s: tick rate %d cannot be scheduled", opts.Code, opts.Game.TickRate)
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 4
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := mapgen.Generate(opts.MapWidth, opts.MapHeight, opts.Seed)
	r := &Room{
		Inbox:      make(chan any, 256),
		Code:       opts.Code,
		onEmpty:    opts.OnEmpty,
		seed:       opts.Seed,
		state:      game.NewState(m, opts.Game, opts.Seed),
		clients:    make(map[string]Conn),
		inputs:     make(map[string]game.Input),
		nextID:     1,
		maxPlayers: opts.MaxPlayers,
		interval:   time.Second / time.Duration(opts.Game.TickRate),
		binary:     opts.Binary,
		store:      opts.Store,
		log:        opts.Logger.With(zap.String("room", opts.Code)),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	r.log.Debug("map generated",
		zap.Int64("seed", opts.Seed),
		zap.Int("rooms", len(m.Rooms)),
		zap.Float64("connected", m.ConnectedRatio()))
	return r, nil
}

// Start arms the first wave and begins ticking.
func (r *Room) Start() error {
	if !r.status.CompareAndSwap(int32(StatusIdle), int32(StatusRunning)) {
		if r.Status() == StatusStopped {
			return ErrRoomStopped
		}
		return fmt.Errorf("room %s already running", r.Code)
	}
	r.state.Start()
	go r.run()
	r.log.Info("room started", zap.Duration("tick", r.interval))
	return nil
}

// Stop cancels the ticker. It does not wait for the room goroutine; use Done.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		prev := Status(r.status.Swap(int32(StatusStopped)))
		close(r.quit)
		if prev != StatusRunning {
			close(r.done)
		}
		r.log.Info("room stopped")
	})
}

// Done is closed once the room goroutine has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) Status() Status { return Status(r.status.Load()) }

// Submit hands a command to the room. It reports false once the room stopped.
func (r *Room) Submit(cmd any) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.quit:
		return false
	}
}

// NumPlayers returns the current number of connected clients.
func (r *Room) NumPlayers() int { return int(r.players.Load()) }

// Wave returns the current wave number.
func (r *Room) Wave() int { return int(r.wave.Load()) }

func (r *Room) Seed() int64 { return r.seed }

func (r *Room) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			r.closeClients()
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Room) tick() {
	wasOver := r.state.GameOver
	game.Step(r.state, r.inputs)
	r.wave.Store(int32(r.state.Wave.Number))

	for _, ev := range r.state.Events {
		if t, payload := eventMessage(ev); t != "" {
			r.broadcast(t, payload)
		}
	}
	r.broadcast(protocol.MsgState, r.buildSnapshot())

	if !wasOver && r.state.GameOver {
		r.log.Info("game over", zap.Int("wave", r.state.Wave.Number), zap.Int("tick", r.state.Tick))
		r.recordRun()
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		res := r.handleJoin(c)
		if c.Reply != nil {
			c.Reply <- res
		}
	case Input:
		if _, ok := r.clients[c.PlayerID]; !ok {
			return
		}
		r.inputs[c.PlayerID] = c.Input
	case Leave:
		r.handleLeave(c.PlayerID)
	case Bonus:
		n := r.state.SpawnBonusHorde(c.Type, c.Count)
		r.log.Debug("bonus horde", zap.String("type", string(c.Type)), zap.Int("count", n))
	default:
		r.log.Warn("unknown command", zap.String("type", fmt.Sprintf("%T", cmd)))
	}
}

func (r *Room) handleJoin(c Join) JoinResult {
	if len(r.clients) >= r.maxPlayers {
		return JoinResult{Err: ErrRoomFull}
	}
	if r.state.GameOver {
		return JoinResult{Err: ErrGameOver}
	}
	idNum := r.nextID
	playerID := fmt.Sprintf("p%d", idNum)
	r.nextID++

	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Player %d", idNum)
	}
	r.clients[playerID] = c.Conn
	r.inputs[playerID] = game.Input{}
	r.state.AddPlayer(playerID, name)
	r.players.Store(int32(len(r.clients)))

	m := r.state.Map
	r.sendTo(c.Conn, protocol.MsgWelcome, protocol.Welcome{
		PlayerID: playerID,
		TickHz:   r.state.Config.TickRate,
		Room:     r.Code,
		Map:      protocol.MapInfo{Width: m.Width, Height: m.Height, Seed: m.Seed},
	})
	r.log.Info("player joined", zap.String("player", playerID), zap.String("name", name))
	return JoinResult{PlayerID: playerID}
}

func (r *Room) handleLeave(playerID string) {
	c, ok := r.clients[playerID]
	delete(r.inputs, playerID)
	r.state.RemovePlayer(playerID)
	if ok {
		_ = c.Close()
		delete(r.clients, playerID)
		r.log.Info("player left", zap.String("player", playerID))
	}
	r.players.Store(int32(len(r.clients)))
	if len(r.clients) == 0 && r.onEmpty != nil && r.Code != "" {
		r.onEmpty(r.Code)
	}
}

func (r *Room) closeClients() {
	for id, c := range r.clients {
		_ = c.Close()
		delete(r.clients, id)
	}
	r.players.Store(0)
}

// frames lazily encodes one message in each format.
type frames struct {
	t       string
	payload any
	text    []byte
	bin     []byte
	err     error
}

func (f *frames) json() ([]byte, error) {
	if f.text == nil && f.err == nil {
		f.text, f.err = protocol.Encode(f.t, f.payload)
	}
	return f.text, f.err
}

func (f *frames) msgpack() ([]byte, error) {
	if f.bin == nil && f.err == nil {
		f.bin, f.err = protocol.EncodeBinary(f.t, f.payload)
	}
	return f.bin, f.err
}

func (r *Room) deliver(c Conn, f *frames) error {
	if bc, ok := c.(BinaryConn); ok && r.binary {
		b, err := f.msgpack()
		if err != nil {
			return err
		}
		return bc.SendBinary(b)
	}
	b, err := f.json()
	if err != nil {
		return err
	}
	return c.Send(b)
}

// broadcast sends to every client. Failed sends are skipped, never retried;
// the transport reports disconnects with Leave.
func (r *Room) broadcast(t string, payload any) {
	f := &frames{t: t, payload: payload}
	for id, c := range r.clients {
		if err := r.deliver(c, f); err != nil {
			r.log.Debug("send skipped", zap.String("player", id), zap.String("msg", t), zap.Error(err))
		}
	}
}

func (r *Room) sendTo(c Conn, t string, payload any) {
	if err := r.deliver(c, &frames{t: t, payload: payload}); err != nil {
		r.log.Debug("send skipped", zap.String("msg", t), zap.Error(err))
	}
}

// recordRun saves the finished game off the room goroutine.
func (r *Room) recordRun() {
	if r.store == nil {
		return
	}
	var score, kills int
	players := make([]string, 0, r.state.Players.Len())
	for _, p := range r.state.Players.Values() {
		score += p.Score
		kills += p.Kills
		players = append(players, p.Name)
	}
	run := records.NewRun(r.Code, r.seed, r.state.Wave.Number, score, kills, players)
	store, log := r.store, r.log
	go func() {
		if err := store.SaveRun(run); err != nil {
			log.Warn("save run failed", zap.String("run", run.ID), zap.Error(err))
			return
		}
		log.Info("run recorded", zap.String("run", run.ID), zap.Int("score", run.Score))
	}()
}
