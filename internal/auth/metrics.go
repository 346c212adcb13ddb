package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// authAttempts counts login outcomes.
var authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fintrack_login_attempts_total",
	Help: "Total number of login attempts by outcome",
}, []string{"outcome"})
