// Package services – AnalyticsService
//
// This file implements AnalyticsService, the read-only aggregation component
// behind the admin dashboard. It reports store-wide totals, the distinct
// users active in the trailing 24 hours, and a recent-conversation listing
// enriched with usernames, topic titles, message counts, and human-readable
// date labels.
package services

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// activityWindow is the trailing interval that counts a user as active.
const activityWindow = 24 * time.Hour

// Summary holds the dashboard counters.
type Summary struct {
	TotalUsers         int64 `json:"total_users"`
	TotalConversations int64 `json:"total_conversations"`
	TotalMessages      int64 `json:"total_messages"`
	ActiveUsers        int64 `json:"active_users"`
}

// RecentConversation is one row of the admin recent-activity listing.
type RecentConversation struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	TopicID      uint      `json:"topic_id"`
	TopicTitle   string    `json:"topic_title"`
	Model        string    `json:"model"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	DateLabel    string    `json:"date_label"`
}

// AnalyticsService aggregates usage data for admins.
type AnalyticsService struct {
	// DB is the GORM handle used for reads.
	DB *gorm.DB

	// RecentLimit caps the recent-conversation listing; 0 uses the default.
	RecentLimit int
	// LabelLocale selects the wording of date labels.
	LabelLocale language.Tag

	// Now is the clock; tests override it to pin label boundaries.
	Now func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Summary returns store-wide totals plus the distinct users with at least
// one message in the trailing 24 hours.
func (s *AnalyticsService) Summary(ctx context.Context) (Summary, error) {
	tr := otel.Tracer("services/AnalyticsService")
	ctx, span := tr.Start(ctx, "Summary")
	defer span.End()

	totals, err := repo.CountTotals(ctx, s.DB)
	if err != nil {
		return Summary{}, err
	}
	active, err := repo.CountActiveUsersSince(ctx, s.DB, s.now().Add(-activityWindow))
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		TotalUsers:         totals.Users,
		TotalConversations: totals.Conversations,
		TotalMessages:      totals.Messages,
		ActiveUsers:        active,
	}, nil
}

// RecentConversations returns the newest conversations across all users,
// enriched for display. A non-positive limit falls back to the configured
// default, then to 10.
func (s *AnalyticsService) RecentConversations(ctx context.Context, limit int) ([]RecentConversation, error) {
	tr := otel.Tracer("services/AnalyticsService")
	ctx, span := tr.Start(ctx, "RecentConversations",
		trace.WithAttributes(attribute.Int("limit", limit)),
	)
	defer span.End()

	if limit <= 0 {
		limit = s.RecentLimit
	}
	if limit <= 0 {
		limit = 10
	}

	convs, err := repo.ListRecent(ctx, s.DB, limit)
	if err != nil {
		return nil, err
	}
	out := make([]RecentConversation, 0, len(convs))
	if len(convs) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	counts, err := repo.MessageCountsByConversation(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	// Usernames and topic titles are looked up once per distinct id; the
	// listing is small so per-id caching beats a multi-join here.
	users := map[uint]string{}
	topics := map[uint]string{}
	now := s.now()
	for _, c := range convs {
		username, ok := users[c.UserID]
		if !ok {
			if u, err := repo.GetUser(ctx, s.DB, c.UserID); err == nil {
				username = u.Username
			}
			users[c.UserID] = username
		}
		title, ok := topics[c.TopicID]
		if !ok {
			title = "Unknown"
			if t, err := repo.GetTopic(ctx, s.DB, c.TopicID); err == nil {
				title = t.Title
			}
			topics[c.TopicID] = title
		}
		out = append(out, RecentConversation{
			ID:           c.ID,
			UserID:       c.UserID,
			Username:     username,
			TopicID:      c.TopicID,
			TopicTitle:   title,
			Model:        c.Model,
			MessageCount: counts[c.ID],
			CreatedAt:    c.CreatedAt,
			DateLabel:    s.dateLabel(c.CreatedAt, now),
		})
	}
	return out, nil
}

// labelSet holds the locale-dependent parts of a date label.
type labelSet struct {
	today, yesterday string
	dateLayout       string
}

var labelLocales = language.NewMatcher([]language.Tag{
	language.English, // fallback
	language.Chinese,
	language.TraditionalChinese,
})

func labelsFor(tag language.Tag) labelSet {
	_, idx, _ := labelLocales.Match(tag)
	if idx >= 1 {
		return labelSet{today: "今天", yesterday: "昨天", dateLayout: "2006年1月2日"}
	}
	return labelSet{today: "Today", yesterday: "Yesterday", dateLayout: "Jan 2, 2006"}
}

// dateLabel renders "Today, 3:04 PM", "Yesterday, 3:04 PM", or a short date,
// comparing calendar days in the reference time's location.
func (s *AnalyticsService) dateLabel(t, now time.Time) string {
	labels := labelsFor(s.LabelLocale)
	t = t.In(now.Location())

	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	yy, ym, yd := now.AddDate(0, 0, -1).Date()

	switch {
	case ty == ny && tm == nm && td == nd:
		return labels.today + ", " + t.Format("3:04 PM")
	case ty == yy && tm == ym && td == yd:
		return labels.yesterday + ", " + t.Format("3:04 PM")
	default:
		return t.Format(labels.dateLayout)
	}
}
