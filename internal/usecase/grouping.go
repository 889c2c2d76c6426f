package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"AlertPulse/internal/domain/models"
	domrepo "AlertPulse/internal/domain/repository"
)

// groupLookback is the window in which near-duplicate notifications for the
// same user and type are clustered under one group id.
const groupLookback = time.Hour

// groupPrefixTokens is how many leading title tokens must match for two
// notifications to share a group.
const groupPrefixTokens = 2

// GroupingEngine assigns each new notification to an existing or new group.
// When grouping is disabled for the user it degrades to a passthrough that
// still mints a fresh id per record, so downstream code sees a uniform
// contract.
type GroupingEngine struct {
	store domrepo.NotificationStore
	nowFn func() time.Time
}

func NewGroupingEngine(store domrepo.NotificationStore) *GroupingEngine {
	return &GroupingEngine{store: store, nowFn: time.Now}
}

// WithClock overrides the time source. Test hook.
func (g *GroupingEngine) WithClock(now func() time.Time) *GroupingEngine {
	g.nowFn = now
	return g
}

// AssignGroup sets candidate.GroupID. Lookup failures fall back to a new
// group rather than failing the pipeline; a record always leaves with a
// group id, immutable from here on.
func (g *GroupingEngine) AssignGroup(ctx context.Context, candidate *models.NotificationRecord, groupingEnabled bool) string {
	if !groupingEnabled {
		candidate.GroupID = uuid.New().String()
		return candidate.GroupID
	}

	since := g.nowFn().Add(-groupLookback)
	recent, err := g.store.FindRecent(ctx, candidate.UserID, candidate.Type, since)
	if err == nil {
		want := titlePrefix(candidate.Title)
		for _, r := range recent {
			if r.GroupID == "" {
				continue
			}
			if titlePrefix(r.Title) == want {
				candidate.GroupID = r.GroupID
				return candidate.GroupID
			}
		}
	}

	candidate.GroupID = uuid.New().String()
	return candidate.GroupID
}

// titlePrefix normalizes the first tokens of a title for similarity matching.
func titlePrefix(title string) string {
	tokens := strings.Fields(strings.ToLower(title))
	if len(tokens) > groupPrefixTokens {
		tokens = tokens[:groupPrefixTokens]
	}
	return strings.Join(tokens, " ")
}
