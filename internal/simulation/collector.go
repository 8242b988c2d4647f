package simulation

import (
	"sort"
	"sync"
	"time"
)

// GameResult is the telemetry of one simulated game.
type GameResult struct {
	Index          int            `json:"index"`
	Seed           int64          `json:"seed"`
	Winner         string         `json:"winner"`
	Turns          int            `json:"turns"`
	PlayerHealth   int            `json:"player_health"`
	OpponentHealth int            `json:"opponent_health"`
	MinionsDied    int            `json:"minions_died"`
	SpellsCast     int            `json:"spells_cast"`
	CardsBurned    int            `json:"cards_burned"`
	FatigueDamage  int            `json:"fatigue_damage"`
	Keywords       map[string]int `json:"keywords,omitempty"`
	Checksum       string         `json:"checksum"`
}

// Report aggregates a simulation batch.
type Report struct {
	GeneratedAt  time.Time      `json:"generated_at"`
	Config       Config         `json:"config"`
	Games        int            `json:"games"`
	PlayerWins   int            `json:"player_wins"`
	OpponentWins int            `json:"opponent_wins"`
	Draws        int            `json:"draws"`
	Unfinished   int            `json:"unfinished"`
	AvgTurns     float64        `json:"avg_turns"`
	Keywords     map[string]int `json:"keywords"`
	Results      []GameResult   `json:"results"`
}

// PlayerWinRate returns the share of finished games the player won.
func (r *Report) PlayerWinRate() float64 {
	finished := r.Games - r.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(r.PlayerWins) / float64(finished)
}

// Collector accumulates results from concurrent games.
type Collector struct {
	mu      sync.Mutex
	cfg     Config
	results []GameResult
}

// NewCollector creates a collector for a batch run with cfg.
func NewCollector(cfg Config) *Collector {
	return &Collector{cfg: cfg}
}

// Record adds a result and returns the number recorded so far.
func (c *Collector) Record(result GameResult) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	return len(c.results)
}

// Finalize builds the report. Results are ordered by game index.
func (c *Collector) Finalize() *Report {
	c.mu.Lock()
	results := append([]GameResult(nil), c.results...)
	c.mu.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Config:      c.cfg,
		Games:       len(results),
		Keywords:    make(map[string]int),
		Results:     results,
	}
	turns := 0
	for _, r := range results {
		turns += r.Turns
		switch r.Winner {
		case "player":
			report.PlayerWins++
		case "opponent":
			report.OpponentWins++
		case "draw":
			report.Draws++
		default:
			report.Unfinished++
		}
		for k, v := range r.Keywords {
			report.Keywords[k] += v
		}
	}
	if len(results) > 0 {
		report.AvgTurns = float64(turns) / float64(len(results))
	}
	return report
}
