package services

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

const (
	maxNotices = 20
	// maxPending matches the default persist queue; older snapshots have either landed or been dropped.
	maxPending = 100
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient message meant for the user, e.g. a failed save.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Session is the in-memory state of one signed-in user: their history and today's record.
// Every field is guarded by mu.
type Session struct {
	mu sync.Mutex

	userID   string
	clock    domain.Clock
	loc      *time.Location
	history  domain.History
	today    domain.DateKey
	record   domain.DailyRecord
	revision uint64
	notices  []Notice
	// pending holds snapshots handed to the persister whose change notification has not come back yet.
	pending []domain.History

	unsubscribe func()

	// lastSeen is unix nanos of the last request that used the session, read without mu.
	lastSeen atomic.Int64
}

func NewSession(userID string, history domain.History, clock domain.Clock, loc *time.Location) *Session {
	if history == nil {
		history = domain.History{}
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}

	s := &Session{
		userID:  userID,
		clock:   clock,
		loc:     loc,
		history: history,
	}
	s.today = domain.Today(clock.Now(), loc)
	s.record = history.Materialized(s.today)
	s.touch(clock.Now())
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// IdleFor reports how long the session has gone unused as of now.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) UserID() string {
	return s.userID
}

// rollover switches to a new record when the local day has changed. Caller holds mu.
func (s *Session) rollover() {
	today := domain.Today(s.clock.Now(), s.loc)
	if today == s.today {
		return
	}
	s.today = today
	s.record = s.history.Materialized(today)
}

// Replace swaps the whole history for an incoming document and reports whether it did.
// The newest document always wins. The only document skipped is the echo of one of this
// session's own writes that a later local mutation has already superseded.
func (s *Session) Replace(history domain.History) bool {
	if history == nil {
		history = domain.History{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.pending {
		if !reflect.DeepEqual(p, history) {
			continue
		}
		superseded := i < len(s.pending)-1
		s.pending = s.pending[i+1:]
		if superseded {
			return false
		}
		break
	}

	s.history = history
	s.revision++
	s.today = domain.Today(s.clock.Now(), s.loc)
	s.record = s.history.Materialized(s.today)
	return true
}

// Mutate applies fn to a copy of today's record. On error nothing changes.
// On success the record is written into the history and a snapshot for persistence is returned.
func (s *Session) Mutate(fn func(rec *domain.DailyRecord) error) (domain.DailyRecord, domain.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()

	next := s.record
	if err := fn(&next); err != nil {
		return s.record, nil, err
	}

	next.Date = s.today
	s.record = next
	s.history.UpsertToday(s.today, next)
	s.revision++

	snapshot := s.history.Clone()
	s.pending = append(s.pending, snapshot)
	if len(s.pending) > maxPending {
		s.pending = s.pending[len(s.pending)-maxPending:]
	}

	return next, snapshot, nil
}

func (s *Session) Today() domain.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	rec := s.record
	rec.Date = s.today
	return rec
}

// Snapshot returns a private copy of the history with the day and revision it belongs to.
func (s *Session) Snapshot() (domain.History, domain.DateKey, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	return s.history.Clone(), s.today, s.revision
}

func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Session) AddNotice(level NoticeLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notices = append(s.notices, Notice{Level: level, Message: message, At: s.clock.Now().UTC()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *Session) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.notices
	s.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

func (s *Session) setUnsubscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribe = fn
}

func (s *Session) close() {
	s.mu.Lock()
	fn := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
