package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/workers"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/metrics"
)

// maxRenderAttempts bounds how often Analyze recomputes when the history is replaced mid-computation.
const maxRenderAttempts = 3

const DefaultIdleTimeout = 30 * time.Minute

type Persister interface {
	Enqueue(userID string, history domain.History) bool
}

type TrackerService struct {
	repo     domain.HistoryRepository
	notifier domain.HistoryNotifier
	users    domain.UserRepository
	persist  Persister
	clock    domain.Clock
	loc      *time.Location
	metrics  *metrics.Metrics
	// idleTimeout is how long an unused session keeps its memory and subscription.
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

type TrackerOption func(*TrackerService)

// WithNotifier enables reloads when another device writes the same document.
func WithNotifier(n domain.HistoryNotifier) TrackerOption {
	return func(s *TrackerService) { s.notifier = n }
}

// WithUsers resolves each user's own time zone instead of the service default.
func WithUsers(users domain.UserRepository) TrackerOption {
	return func(s *TrackerService) { s.users = users }
}

func WithClock(clock domain.Clock) TrackerOption {
	return func(s *TrackerService) { s.clock = clock }
}

func WithLocation(loc *time.Location) TrackerOption {
	return func(s *TrackerService) { s.loc = loc }
}

func WithIdleTimeout(d time.Duration) TrackerOption {
	return func(s *TrackerService) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

func NewTrackerService(repo domain.HistoryRepository, persist Persister, opts ...TrackerOption) *TrackerService {
	s := &TrackerService{
		repo:     repo,
		persist:  persist,
		clock:    domain.SystemClock{},
		loc:      time.Local,
		metrics:  metrics.New(),
		sessions: make(map[string]*Session),

		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if w, ok := persist.(*workers.PersistWorker); ok {
		w.SetFailureHandler(s.ReportPersistFailure)
	}

	return s
}

type MutationResult struct {
	Record  domain.DailyRecord `json:"record"`
	Message string             `json:"message"`
}

func (s *TrackerService) location(ctx context.Context, userID string) *time.Location {
	if s.users == nil {
		return s.loc
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Warnf("[SESSION] could not resolve timezone for user %s, using default: %v", userID, err)
		return s.loc
	}
	return u.Location()
}

// Session returns the live session of userID, loading it from the store on first use.
func (s *TrackerService) Session(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	s.mu.RLock()
	sess, ok := s.sessions[userID]
	if ok {
		// Touched under the lock so a concurrent sweep sees the fresh timestamp.
		sess.touch(s.clock.Now())
	}
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}

	history, err := s.repo.Read(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrHistoryNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
		}
		history = domain.History{}
	}

	fresh := NewSession(userID, history, s.clock, s.location(ctx, userID))

	s.mu.Lock()
	if existing, ok := s.sessions[userID]; ok {
		existing.touch(s.clock.Now())
		s.mu.Unlock()
		return existing, nil
	}
	s.sessions[userID] = fresh
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	s.subscribe(fresh)

	log.Debugf("[SESSION] loaded %d days of history for user %s", len(history), userID)
	return fresh, nil
}

func (s *TrackerService) subscribe(sess *Session) {
	if s.notifier == nil {
		return
	}

	// Subscriptions outlive the request that created the session.
	unsubscribe, err := s.notifier.Subscribe(context.Background(), sess.UserID(), func(h domain.History) {
		if !sess.Replace(h) {
			log.Debugf("[SESSION] ignored stale echo of an own write for user %s", sess.UserID())
			return
		}
		s.metrics.ReloadsTotal.Inc()
		log.Debugf("[SESSION] history replaced by change notification for user %s", sess.UserID())
	})
	if err != nil {
		log.Warnf("[SESSION] subscribe failed for user %s: %v", sess.UserID(), err)
		sess.AddNotice(NoticeError, fmt.Sprintf("Live sync unavailable: %v", err))
		return
	}
	sess.setUnsubscribe(unsubscribe)
}

// Logout discards the in-memory state of userID. The next request reloads from the store.
func (s *TrackerService) Logout(userID string) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if ok {
		sess.close()
	}
}

// EvictIdle drops every session unused for longer than the idle timeout and closes its
// subscription. The next request of that user reloads from the store.
func (s *TrackerService) EvictIdle() int {
	now := s.clock.Now()

	s.mu.Lock()
	var idle []*Session
	for id, sess := range s.sessions {
		if sess.IdleFor(now) > s.idleTimeout {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	for _, sess := range idle {
		sess.close()
		log.Debugf("[SESSION] evicted idle session of user %s", sess.UserID())
	}
	return len(idle)
}

// StartEviction sweeps idle sessions every interval until ctx is done.
func (s *TrackerService) StartEviction(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.idleTimeout / 2
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Infof("[SESSION] idle sweep every %s, timeout %s", interval, s.idleTimeout)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.EvictIdle(); n > 0 {
					log.Infof("[SESSION] evicted %d idle sessions", n)
				}
			}
		}
	}()
}

// ReportPersistFailure keeps the local state and tells the user the save did not land.
func (s *TrackerService) ReportPersistFailure(userID string, err error) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	sess.AddNotice(NoticeError, fmt.Sprintf("Save failed: %v", err))
}

func (s *TrackerService) mutate(ctx context.Context, userID string, fn func(rec *domain.DailyRecord) (string, error)) (*MutationResult, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return nil, err
	}

	var message string
	rec, snapshot, err := sess.Mutate(func(rec *domain.DailyRecord) error {
		msg, err := fn(rec)
		message = msg
		return err
	})
	if err != nil {
		return nil, err
	}

	if !s.persist.Enqueue(userID, snapshot) {
		sess.AddNotice(NoticeError, "Save skipped: too many pending saves, your next change will retry")
	}

	return &MutationResult{Record: rec, Message: message}, nil
}

func (s *TrackerService) Today(ctx context.Context, userID string) (domain.DailyRecord, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return domain.DailyRecord{}, err
	}
	return sess.Today(), nil
}

func (s *TrackerService) History(ctx context.Context, userID string) (domain.History, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	h, _, _ := sess.Snapshot()
	return h, nil
}

func (s *TrackerService) SetGoal(ctx context.Context, userID string, c domain.Category, goal float64) (*MutationResult, error) {
	return s.mutate(ctx, userID, func(rec *domain.DailyRecord) (string, error) {
		if err := rec.SetGoal(c, goal); err != nil {
			return "", err
		}
		return fmt.Sprintf("Goal for %s updated to %g %s.", c, goal, c.Unit()), nil
	})
}

func (s *TrackerService) AddProgress(ctx context.Context, userID string, c domain.Category, amount float64) (*MutationResult, error) {
	return s.mutate(ctx, userID, func(rec *domain.DailyRecord) (string, error) {
		if err := rec.AddProgress(c, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("Logged %g %s for %s!", amount, c.Unit(), c), nil
	})
}

func (s *TrackerService) ToggleMindset(ctx context.Context, userID string) (*MutationResult, error) {
	return s.mutate(ctx, userID, func(rec *domain.DailyRecord) (string, error) {
		if rec.ToggleMindset() {
			return "Mindset: BELIEVE 100% affirmed!", nil
		}
		return "Mindset status reset.", nil
	})
}

func (s *TrackerService) ToggleSocialCheck(ctx context.Context, userID string) (*MutationResult, error) {
	return s.mutate(ctx, userID, func(rec *domain.DailyRecord) (string, error) {
		if rec.ToggleSocialCheck() {
			return "Social goal accomplished! Made someone smile!", nil
		}
		return "Social goal unchecked.", nil
	})
}

func (s *TrackerService) Reset(ctx context.Context, userID string) (*MutationResult, error) {
	return s.mutate(ctx, userID, func(rec *domain.DailyRecord) (string, error) {
		rec.Reset()
		return "Daily progress reset! New day, new opportunities!", nil
	})
}

func (s *TrackerService) Notices(ctx context.Context, userID string) ([]Notice, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sess.DrainNotices(), nil
}

// Analyze runs the engine on a snapshot. When the history is replaced while computing,
// the stale result is thrown away and the newest document is analyzed instead.
func (s *TrackerService) Analyze(ctx context.Context, userID string, period domain.Period) (domain.Analysis, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return domain.Analysis{}, err
	}

	var result domain.Analysis
	for attempt := 0; attempt < maxRenderAttempts; attempt++ {
		history, today, revision := sess.Snapshot()
		result = Analyze(history, period, today)

		if sess.Revision() == revision {
			break
		}
		log.Debugf("[SESSION] history changed during analysis for user %s, recomputing", userID)
	}

	s.metrics.AnalysisRunsTotal.WithLabelValues(string(period)).Inc()
	return result, nil
}
