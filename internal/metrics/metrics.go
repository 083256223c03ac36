package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BuddyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_requests_total",
			Help: "Buddy request transitions by outcome",
		},
		[]string{"outcome"},
	)
	ChallengesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenges_created_total",
			Help: "Challenges persisted by type",
		},
		[]string{"type"},
	)
	ContactMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_matches_total",
			Help: "Contact scan matches by strategy",
		},
		[]string{"matched_by"},
	)
	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notification events handled by the dispatcher",
		},
		[]string{"type", "result"},
	)
	ThumbnailsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnails_processed_total",
			Help: "Coliseum thumbnail enhancements by result",
		},
		[]string{"result"},
	)
)

// Register adds the domain collectors to the default registry. Call once from main.
func Register() {
	prometheus.MustRegister(BuddyRequests)
	prometheus.MustRegister(ChallengesCreated)
	prometheus.MustRegister(ContactMatches)
	prometheus.MustRegister(NotificationsDispatched)
	prometheus.MustRegister(ThumbnailsProcessed)
}
