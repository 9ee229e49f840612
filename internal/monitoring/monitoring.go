// Package monitoring holds the Prometheus counters for credential, follow and
// like operations.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Metrics struct {
	SignupStaged   prometheus.Counter
	LoginSuccess   prometheus.Counter
	LoginFailure   *prometheus.CounterVec
	FollowChanges  *prometheus.CounterVec
	LikeToggles    *prometheus.CounterVec
	CommitFailures *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignupStaged: f.NewCounter(prometheus.CounterOpts{
			Name: "warbler_signup_staged_total",
			Help: "Total signups staged for commit",
		}),
		LoginSuccess: f.NewCounter(prometheus.CounterOpts{
			Name: "warbler_login_success_total",
			Help: "Total successful authentications",
		}),
		LoginFailure: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_login_failure_total",
			Help: "Total failed authentications",
		}, []string{"reason"}),
		FollowChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_follow_changes_total",
			Help: "Follow graph edges staged, by action",
		}, []string{"action"}),
		LikeToggles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_like_toggles_total",
			Help: "Like toggles committed, by resulting state",
		}, []string{"state"}),
		CommitFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_commit_failures_total",
			Help: "Failed commits, by error kind",
		}, []string{"kind"}),
	}
}

// Push sends everything gathered by g to a Prometheus Pushgateway.
// It does nothing when url is empty.
func Push(url string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	return push.New(url, "warbler").Gatherer(g).Push()
}
