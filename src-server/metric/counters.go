package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VerificationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proflare_verification_outcomes_total",
		Help: "Answers to verification challenges, by outcome",
	}, []string{"outcome"})

	VerificationRoleGrants = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proflare_verification_role_grants_total",
		Help: "Verified roles granted, one per guild",
	})

	TicketsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proflare_tickets_opened_total",
		Help: "Ticket channels created, by kind",
	}, []string{"kind"})

	TicketsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proflare_tickets_closed_total",
		Help: "Ticket channels deleted with the close command",
	})

	Announcements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proflare_announcements_total",
		Help: "Join and boost announcements posted, by kind",
	}, []string{"kind"})
)
