package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type GameMetrics struct {
	advances     *prometheus.CounterVec
	batchWindows *prometheus.CounterVec
	gateRequests *prometheus.CounterVec
	gateStalled  prometheus.Gauge
	roundNumber  prometheus.Gauge
	prizePool    prometheus.Gauge
	rewardPool   prometheus.Gauge
}

var (
	gameOnce     sync.Once
	gameRegistry *GameMetrics
)

// Game returns the lazily-initialised registry tracking round progression.
func Game() *GameMetrics {
	gameOnce.Do(func() {
		gameRegistry = &GameMetrics{
			advances: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "degenerus_game_advances_total",
				Help: "Count of advance calls segmented by phase and outcome.",
			}, []string{"phase", "outcome"}),
			batchWindows: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "degenerus_batch_windows_total",
				Help: "Count of resumable batch windows segmented by task.",
			}, []string{"task"}),
			gateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "degenerus_gate_requests_total",
				Help: "Count of entropy requests segmented by kind (fresh, retry).",
			}, []string{"kind"}),
			gateStalled: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "degenerus_gate_stalled",
				Help: "1 while the randomness gate is stalled, 0 otherwise.",
			}),
			roundNumber: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "degenerus_round_number",
				Help: "Current round number.",
			}),
			prizePool: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "degenerus_prize_pool",
				Help: "Current prize pool in credit base units.",
			}),
			rewardPool: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "degenerus_reward_pool",
				Help: "Current reward pool in credit base units.",
			}),
		}
		prometheus.MustRegister(
			gameRegistry.advances,
			gameRegistry.batchWindows,
			gameRegistry.gateRequests,
			gameRegistry.gateStalled,
			gameRegistry.roundNumber,
			gameRegistry.prizePool,
			gameRegistry.rewardPool,
		)
	})
	return gameRegistry
}

func (m *GameMetrics) ObserveAdvance(phase, outcome string) {
	if m == nil {
		return
	}
	if phase == "" {
		phase = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.advances.WithLabelValues(phase, outcome).Inc()
}

func (m *GameMetrics) ObserveBatchWindow(task string) {
	if m == nil {
		return
	}
	if task == "" {
		task = "unknown"
	}
	m.batchWindows.WithLabelValues(task).Inc()
}

func (m *GameMetrics) ObserveGateRequest(retry bool) {
	if m == nil {
		return
	}
	kind := "fresh"
	if retry {
		kind = "retry"
	}
	m.gateRequests.WithLabelValues(kind).Inc()
}

func (m *GameMetrics) SetGateStalled(stalled bool) {
	if m == nil {
		return
	}
	if stalled {
		m.gateStalled.Set(1)
		return
	}
	m.gateStalled.Set(0)
}

func (m *GameMetrics) SetRound(number uint64) {
	if m == nil {
		return
	}
	m.roundNumber.Set(float64(number))
}

func (m *GameMetrics) SetPools(prize, reward float64) {
	if m == nil {
		return
	}
	m.prizePool.Set(prize)
	m.rewardPool.Set(reward)
}
