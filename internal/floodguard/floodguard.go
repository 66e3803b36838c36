package floodguard

import (
	"sync"
	"time"
)

// Action identifies a rate-limited operation kind.
type Action string

const (
	ActionRoomCreate Action = "room-create"
	ActionRoomJoin   Action = "room-join"
	ActionMessage    Action = "chat-message"
)

// Budget is the number of admissions allowed inside a sliding window.
type Budget struct {
	Limit  int
	Window time.Duration
}

// DefaultBudgets mirror the documented per-user limits.
func DefaultBudgets() map[Action]Budget {
	return map[Action]Budget{
		ActionRoomCreate: {Limit: 5, Window: time.Minute},
		ActionRoomJoin:   {Limit: 10, Window: time.Minute},
		ActionMessage:    {Limit: 30, Window: time.Minute},
	}
}

type window struct {
	hits []time.Time
	ts   time.Time
}

// Guard is a per-identity sliding-window admission control. Entries are
// pruned lazily on access and swept periodically, same lifecycle as the
// IP limiter in internal/mw.
type Guard struct {
	mu      sync.Mutex
	budgets map[Action]Budget
	windows map[string]*window
	stop    chan struct{}
	once    sync.Once
}

func New(budgets map[Action]Budget) *Guard {
	if budgets == nil {
		budgets = DefaultBudgets()
	}
	g := &Guard{
		budgets: budgets,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
	go g.gc()
	return g
}

// TryAdmit records and admits the action unless the identity exhausted its
// budget for the window. On denial it reports how long until the oldest
// hit falls out of the window.
func (g *Guard) TryAdmit(identity string, action Action) (bool, time.Duration) {
	b, ok := g.budgets[action]
	if !ok || b.Limit <= 0 {
		return true, 0
	}
	now := time.Now()
	key := string(action) + "|" + identity

	g.mu.Lock()
	defer g.mu.Unlock()
	w := g.windows[key]
	if w == nil {
		w = &window{}
		g.windows[key] = w
	}
	w.ts = now

	// Drop hits that slid out of the window.
	cut := 0
	for cut < len(w.hits) && now.Sub(w.hits[cut]) >= b.Window {
		cut++
	}
	if cut > 0 {
		w.hits = append(w.hits[:0], w.hits[cut:]...)
	}

	if len(w.hits) >= b.Limit {
		retry := b.Window - now.Sub(w.hits[0])
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry
	}
	w.hits = append(w.hits, now)
	return true, 0
}

func (g *Guard) gc() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			now := time.Now()
			g.mu.Lock()
			for k, w := range g.windows {
				if now.Sub(w.ts) > 2*time.Minute {
					delete(g.windows, k)
				}
			}
			g.mu.Unlock()
		}
	}
}

// Stop halts the sweep goroutine for graceful shutdown.
func (g *Guard) Stop() {
	g.once.Do(func() { close(g.stop) })
}
