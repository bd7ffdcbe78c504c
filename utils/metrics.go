package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	likesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_likes_toggled_total",
		Help: "Number of like toggles grouped by resulting state.",
	}, []string{"state"})

	commentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_comments_created_total",
		Help: "Number of comments created grouped by kind (comment or reply).",
	}, []string{"kind"})

	notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_notifications_created_total",
		Help: "Number of notifications fanned out grouped by type.",
	}, []string{"type"})

	viewsCounted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_post_views_total",
		Help: "View-count requests grouped by whether they were counted or deduplicated.",
	}, []string{"outcome"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})

	accountsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moaboard_accounts_deleted_total",
		Help: "Account deletions grouped by initiator (self or admin).",
	}, []string{"initiator"})
)

// MetricLikeToggled increments the like-toggle counter.
func MetricLikeToggled(liked bool) {
	if liked {
		likesToggled.WithLabelValues("liked").Inc()
		return
	}
	likesToggled.WithLabelValues("unliked").Inc()
}

// MetricCommentCreated increments the comment counter.
func MetricCommentCreated(kind string) {
	commentsCreated.WithLabelValues(kind).Inc()
}

// MetricNotificationCreated increments the notification fan-out counter.
func MetricNotificationCreated(typ string) {
	notificationsCreated.WithLabelValues(typ).Inc()
}

// MetricViewCounted records a view-count request outcome.
func MetricViewCounted(counted bool) {
	if counted {
		viewsCounted.WithLabelValues("counted").Inc()
		return
	}
	viewsCounted.WithLabelValues("deduplicated").Inc()
}

// MetricRateLimitHit increments the rate-limit hit counter.
func MetricRateLimitHit(limiter string) {
	rateLimitHits.WithLabelValues(limiter).Inc()
}

// MetricAccountDeleted increments the account deletion counter.
func MetricAccountDeleted(initiator string) {
	accountsDeleted.WithLabelValues(initiator).Inc()
}

// MetricsHandler exposes the Prometheus registry over gin.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
