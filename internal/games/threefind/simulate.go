package threefind

import (
	"github.com/vovakirdan/threefind/internal/core"
	"github.com/vovakirdan/threefind/internal/registry"
)

// SimulationResult summarizes a headless autoplay run.
type SimulationResult struct {
	Seed     int64
	Ticks    int
	Finished bool // Game ended before the tick limit
	Stats    registry.SessionStats
	Snapshot Snapshot
}

// Simulate plays a headless game, always taking the first hinted move,
// until the game ends or maxTicks pass. Runs with the same seed and
// config produce the same result.
func Simulate(mode Mode, rt core.RuntimeConfig, maxTicks int) (SimulationResult, error) {
	g := NewHeadless(mode)
	g.Reset(rt)

	ticks := 0
	for ticks < maxTicks && !g.State().GameOver {
		if g.Settled() {
			if m, ok := g.Hint(); ok {
				g.Play(m)
			}
		}
		g.Step(core.NewInputFrame())
		ticks++
	}

	return SimulationResult{
		Seed:     rt.Seed,
		Ticks:    ticks,
		Finished: g.State().GameOver,
		Stats:    g.SessionStats(),
		Snapshot: g.Snapshot(),
	}, g.err
}
