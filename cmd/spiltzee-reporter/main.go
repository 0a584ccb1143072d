// Command spiltzee-reporter is a scheduled batch job: once a month it
// summarizes every user's previous-month spending and mails the summary
// through the notification collaborator. It authenticates with the
// service-role key so it can read all profiles, and it drops run metrics
// in textfile-collector format for a node exporter to pick up.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Shritej1000/Spiltzee/internal/analytics"
	"github.com/Shritej1000/Spiltzee/internal/config"
	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/money"
	"github.com/Shritej1000/Spiltzee/internal/notify"
	"github.com/Shritej1000/Spiltzee/internal/postgrest"
	"github.com/Shritej1000/Spiltzee/internal/storage"
	"github.com/Shritej1000/Spiltzee/internal/storage/rest"
	"github.com/Shritej1000/Spiltzee/pkg/logging"
)

// maxConcurrentReports caps parallel per-user work so a large user base
// does not hammer the backend.
const maxConcurrentReports = 4

type metrics struct {
	registry *prometheus.Registry
	users    prometheus.Gauge
	sent     prometheus.Counter
	failed   prometheus.Counter
	duration prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spiltzee_report_users_total",
			Help: "Number of user profiles considered in the last run.",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spiltzee_reports_sent_total",
			Help: "Monthly reports delivered in the last run.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spiltzee_reports_failed_total",
			Help: "Monthly reports that could not be delivered in the last run.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spiltzee_report_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
	}
	m.registry.MustRegister(m.users, m.sent, m.failed, m.duration)
	return m
}

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.ValidateReporter(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.NotifyEndpoint == "" {
		slog.Error("NOTIFY_ENDPOINT is required for the reporter")
		os.Exit(1)
	}

	// The service-role key is both the apikey and the bearer token, which
	// bypasses row-level security so every user's rows are readable.
	store := rest.New(postgrest.New(cfg.BackendURL, cfg.ServiceKey,
		postgrest.StaticToken(cfg.ServiceKey), cfg.HTTPTimeout))
	notifier := notify.New(cfg.NotifyEndpoint, cfg.HTTPTimeout)

	if err := run(context.Background(), cfg, store, notifier); err != nil {
		slog.Error("Report run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, store storage.Store, notifier *notify.Client) error {
	started := time.Now()
	m := newMetrics()

	// Always report on the month that just ended.
	year, month := previousMonth(started)
	slog.Info("Starting monthly report run", "year", year, "month", month.String())

	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	m.users.Set(float64(len(profiles)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReports)
	for _, profile := range profiles {
		profile := profile
		g.Go(func() error {
			if err := reportUser(ctx, store, notifier, profile, year, month); err != nil {
				// One user's failure should not sink the whole run.
				slog.Error("Failed to report for user", "user_id", profile.ID, "error", err)
				m.failed.Inc()
				return nil
			}
			m.sent.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.duration.Set(time.Since(started).Seconds())
	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, m.registry); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}
	slog.Info("Monthly report run finished", "users", len(profiles), "duration", time.Since(started))
	return nil
}

// previousMonth returns the calendar month before now's, in UTC. It steps
// back from the first of the current month: subtracting a month from a
// date like Mar 31 would normalize through Feb 31 and land in March again.
func previousMonth(now time.Time) (int, time.Month) {
	now = now.UTC()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return prev.Year(), prev.Month()
}

func reportUser(ctx context.Context, store storage.Store, notifier *notify.Client, user models.User, year int, month time.Month) error {
	from, to := analytics.MonthBounds(year, month)
	expenses, err := store.ListExpenses(ctx, user.ID, storage.ExpenseFilter{From: from, To: to})
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}
	if len(expenses) == 0 {
		slog.Debug("No spending to report", "user_id", user.ID)
		return nil
	}

	overview := analytics.Overview(year, month, expenses)
	return notifier.Send(ctx, notify.MonthlyReport(user.Email, summarize(overview)))
}

// summarize renders a month overview as the plain-text body of the report
// email.
func summarize(o analytics.MonthOverview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You spent %s across %d expenses in %s %d.\n",
		money.Format(o.Total), o.Count, o.Month, o.Year)
	for _, c := range o.ByCategory {
		fmt.Fprintf(&b, "  %s: %s (%s%%)\n", c.Category, money.Format(c.Total), c.Share)
	}
	return b.String()
}
