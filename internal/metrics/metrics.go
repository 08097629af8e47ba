package metrics

import (
	"net/http"

	"github.com/fungo/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// likesTotal counts like requests. Labels: result (counted, duplicate)
	likesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fungo",
		Name:      "category_likes_total",
		Help:      "Like requests handled, split by whether they were counted",
	}, []string{"result"})

	categoryViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fungo",
		Name:      "category_views_total",
		Help:      "Category detail views",
	})

	pageClicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fungo",
		Name:      "page_clicks_total",
		Help:      "Tracked page redirects followed",
	})

	// sessionVisits counts visit tracker transitions. Labels: transition (first, same_day, new_day)
	sessionVisits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fungo",
		Name:      "session_visits_total",
		Help:      "Visit tracker transitions",
	}, []string{"transition"})

	// siteTotals mirrors StatsService.Snapshot. Labels: kind
	siteTotals = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fungo",
		Name:      "site_totals",
		Help:      "Site level totals refreshed by the stats job",
	}, []string{"kind"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLike records a like request.
func ObserveLike(counted bool) {
	if counted {
		likesTotal.WithLabelValues("counted").Inc()
		return
	}
	likesTotal.WithLabelValues("duplicate").Inc()
}

// ObserveCategoryView records a category detail view.
func ObserveCategoryView() {
	categoryViewsTotal.Inc()
}

// ObservePageClick records a followed page redirect.
func ObservePageClick() {
	pageClicksTotal.Inc()
}

// ObserveVisit records a visit tracker transition.
func ObserveVisit(transition service.VisitTransition) {
	switch transition {
	case service.VisitFirst:
		sessionVisits.WithLabelValues("first").Inc()
	case service.VisitNewDay:
		sessionVisits.WithLabelValues("new_day").Inc()
	default:
		sessionVisits.WithLabelValues("same_day").Inc()
	}
}

// SetSiteStats publishes a stats snapshot as gauges.
func SetSiteStats(stats service.SiteStats) {
	siteTotals.WithLabelValues("categories").Set(float64(stats.Categories))
	siteTotals.WithLabelValues("pages").Set(float64(stats.Pages))
	siteTotals.WithLabelValues("users").Set(float64(stats.Users))
	siteTotals.WithLabelValues("likes").Set(float64(stats.Likes))
	siteTotals.WithLabelValues("category_views").Set(float64(stats.CategoryViews))
	siteTotals.WithLabelValues("page_views").Set(float64(stats.PageViews))
}

// StatsSource provides the snapshot published by Refresh.
type StatsSource interface {
	Snapshot() (service.SiteStats, error)
}

// Refresh loads a snapshot from src and publishes it.
func Refresh(src StatsSource) error {
	stats, err := src.Snapshot()
	if err != nil {
		return err
	}
	SetSiteStats(stats)
	return nil
}
