package game

import "swarm/rng"

// WaveConfig is the spawn plan for one wave.
type WaveConfig struct {
	EnemyCount   int
	SpawnDelayMs float64
	Weights      []rng.Weighted[EnemyType]
}

// WaveConfigFor returns the plan for wave n (1-based). Enemy count grows with
// every wave; runners join from wave 2 and tanks from wave 3.
func WaveConfigFor(n int) WaveConfig {
	if n < 1 {
		n = 1
	}
	weights := []rng.Weighted[EnemyType]{{Item: Grunt, Weight: 70}}
	if n >= 2 {
		weights = append(weights, rng.Weighted[EnemyType]{Item: Runner, Weight: float64(min(20+5*(n-2), 40))})
	}
	if n >= 3 {
		weights = append(weights, rng.Weighted[EnemyType]{Item: Tank, Weight: float64(min(10+3*(n-3), 25))})
	}
	return WaveConfig{
		EnemyCount:   5 + 3*(n-1),
		SpawnDelayMs: max(400, 2000-150*float64(n-1)),
		Weights:      weights,
	}
}

type WavePhase int

const (
	WaveIdle WavePhase = iota
	WaveDelaying
	WaveActive
)

// Spawner places one wave enemy. It reports false when no enemy could be
// placed.
type Spawner interface {
	SpawnWaveEnemy(t EnemyType) bool
}

// WaveManager drives delay -> active -> complete -> delay, forever.
type WaveManager struct {
	Number    int
	Phase     WavePhase
	Spawned   int
	Remaining int
	Total     int

	// Schedule maps a wave number to its plan.
	Schedule func(n int) WaveConfig
	DelayMs  float64

	current    WaveConfig
	delayLeft  float64
	spawnTimer float64
}

func NewWaveManager(delayMs float64) *WaveManager {
	return &WaveManager{Schedule: WaveConfigFor, DelayMs: delayMs}
}

// Arm starts the pre-wave delay.
func (w *WaveManager) Arm() {
	w.Phase = WaveDelaying
	w.delayLeft = w.DelayMs
}

func (w *WaveManager) Active() bool   { return w.Phase == WaveActive }
func (w *WaveManager) Delaying() bool { return w.Phase == WaveDelaying }

// Update advances timers by dt ms, spawning through sp. It returns the wave
// events raised.
func (w *WaveManager) Update(dt float64, sp Spawner, r *rng.RNG) []Event {
	var events []Event
	if w.Phase == WaveDelaying {
		w.delayLeft -= dt
		if w.delayLeft > 0 {
			return nil
		}
		events = append(events, w.startNextWave())
	}
	if w.Phase != WaveActive {
		return events
	}

	if w.Spawned < w.Total {
		w.spawnTimer -= dt
		if w.spawnTimer <= 0 {
			t, ok := rng.Pick(r, w.current.Weights)
			if !ok {
				t = Grunt
			}
			w.Spawned++
			if sp.SpawnWaveEnemy(t) {
				w.Remaining++
			}
			w.spawnTimer = w.current.SpawnDelayMs
		}
	}

	if w.Spawned >= w.Total && w.Remaining <= 0 {
		events = append(events, Event{Kind: EventWaveComplete, Wave: w.Number})
		w.Arm()
	}
	return events
}

func (w *WaveManager) startNextWave() Event {
	w.Number++
	w.current = w.Schedule(w.Number)
	w.Phase = WaveActive
	w.Spawned = 0
	w.Remaining = 0
	w.Total = w.current.EnemyCount
	w.spawnTimer = 0
	return Event{Kind: EventWaveStart, Wave: w.Number, EnemyCount: w.Total}
}

// AddBonus records n extra enemies in the running wave. Both Spawned and
// Remaining grow, and Total grows with them so the regular spawn count is
// unchanged. It reports false outside an active wave.
func (w *WaveManager) AddBonus(n int) bool {
	if w.Phase != WaveActive || n <= 0 {
		return false
	}
	w.Spawned += n
	w.Remaining += n
	w.Total += n
	return true
}

// EnemyKilled records the death of a tracked enemy.
func (w *WaveManager) EnemyKilled() {
	if w.Remaining > 0 {
		w.Remaining--
	}
}
