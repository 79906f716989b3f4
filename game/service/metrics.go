package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_sessions_created_total",
			Help: "Total game sessions created",
		},
	)
	TurnsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastermind_turns_finalized_total",
			Help: "Total turns scored, by resulting game status",
		},
		[]string{"status"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastermind_games_finished_total",
			Help: "Total games that ended, by result",
		},
		[]string{"result"},
	)
	LeaderboardErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_leaderboard_errors_total",
			Help: "Total failed leaderboard reads and writes",
		},
	)
)

func init() {
	prometheus.MustRegister(SessionsCreated)
	prometheus.MustRegister(TurnsFinalized)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(LeaderboardErrors)
}
