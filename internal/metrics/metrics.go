// Package metrics defines the Prometheus collectors. A standalone package
// keeps HTTP, resolver and provisioning free of import cycles.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "OAuth login attempts by app and outcome (started|success|failure)",
	}, []string{"app", "outcome"})

	AccountsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_created_total",
		Help: "Local accounts created on first login, by app",
	}, []string{"app"})

	ProvisionSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provision_steps_total",
		Help: "Completed provisioning sub-operations by kind",
	}, []string{"kind"})
)

// Register registers all collectors on reg (or the default registerer).
// Double registration is tolerated so tests can call it freely.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LoginAttempts, AccountsCreated, ProvisionSteps} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
