package services

import "sync"

// GameLocks serializes mutations touching one game. The lifecycle,
// roster and answer services all contend for the same game's mutex,
// so an answer cannot land after the cursor it was validated against
// has moved, and a team cannot slip into a game mid readiness check.
// Different games proceed in parallel.
type GameLocks struct {
	locks sync.Map // gameID -> *sync.Mutex
}

func NewGameLocks() *GameLocks {
	return &GameLocks{}
}

// Lock acquires the game's mutex and returns the unlock func.
func (g *GameLocks) Lock(gameID uint) func() {
	v, _ := g.locks.LoadOrStore(gameID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
