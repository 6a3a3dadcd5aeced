// Package cache holds the last good schedule of every learner and serves
// day-range slices of it.
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

var (
	ErrNotCached        = errors.New("cache: no schedule for learner")
	ErrInvalidPageToken = errors.New("cache: invalid page token")
	ErrInvalidRange     = errors.New("cache: invalid day range")
)

// MaxSliceDay bounds slice starts and spans. It is far past any horizon a
// plan can grow to.
const MaxSliceDay = 10 * 365

// entry is immutable once stored. Updates build a new entry and swap the
// pointer, so readers always see one complete schedule.
type entry struct {
	schedule *domain.Schedule
	storedAt time.Time
}

// ScheduleCache keeps one atomically swapped entry per learner.
type ScheduleCache struct {
	mu      sync.Mutex
	entries map[string]*atomic.Pointer[entry]
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*ScheduleCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *ScheduleCache) { c.now = now }
}

// New builds a cache whose entries stay fresh for ttl. A ttl of zero never
// expires entries on age alone.
func New(ttl time.Duration, opts ...Option) *ScheduleCache {
	c := &ScheduleCache{
		entries: make(map[string]*atomic.Pointer[entry]),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ScheduleCache) slot(learnerID string) *atomic.Pointer[entry] {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[learnerID]
	if !ok {
		p = &atomic.Pointer[entry]{}
		c.entries[learnerID] = p
	}
	return p
}

func (c *ScheduleCache) load(learnerID string) *entry {
	return c.slot(learnerID).Load()
}

// Load returns a private copy of the cached schedule.
func (c *ScheduleCache) Load(learnerID string) (*domain.Schedule, bool) {
	e := c.load(learnerID)
	if e == nil {
		return nil, false
	}
	return e.schedule.Clone(), true
}

// Fresh returns the cached schedule when it is not stale, was computed from
// the given snapshot revision and is younger than the ttl.
func (c *ScheduleCache) Fresh(learnerID string, revision int64) (*domain.Schedule, bool) {
	e := c.load(learnerID)
	if e == nil || e.schedule.IsStale || e.schedule.Revision != revision {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.schedule.Clone(), true
}

// Swap stores a newly generated schedule under the next version and returns
// a copy of what was stored.
func (c *ScheduleCache) Swap(s *domain.Schedule) *domain.Schedule {
	p := c.slot(s.LearnerID)
	for {
		prev := p.Load()
		next := &entry{schedule: s.Clone(), storedAt: c.now()}
		next.schedule.IsStale = false
		next.schedule.Slice = nil
		next.schedule.Version = 1
		if prev != nil {
			next.schedule.Version = prev.schedule.Version + 1
		}
		if p.CompareAndSwap(prev, next) {
			return next.schedule.Clone()
		}
	}
}

// MarkStale replaces the learner's entry with a copy flagged stale and
// carrying warn. The version is kept: the items are the same ones.
func (c *ScheduleCache) MarkStale(learnerID string, warn domain.Warning) (*domain.Schedule, bool) {
	p := c.slot(learnerID)
	for {
		prev := p.Load()
		if prev == nil {
			return nil, false
		}
		next := &entry{schedule: flagStale(prev.schedule, warn), storedAt: prev.storedAt}
		if p.CompareAndSwap(prev, next) {
			return next.schedule.Clone(), true
		}
	}
}

// Invalidate drops the learner's entry.
func (c *ScheduleCache) Invalidate(learnerID string) {
	c.slot(learnerID).Store(nil)
}

// Slice serves a day range of the cached schedule. A non-empty pageToken
// replaces startDay and daySpan.
func (c *ScheduleCache) Slice(learnerID string, startDay, daySpan int, pageToken string) (*domain.ScheduleSlice, error) {
	if pageToken != "" {
		tok, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, err
		}
		if tok.LearnerID != learnerID {
			return nil, ErrInvalidPageToken
		}
		startDay, daySpan = tok.Start, tok.Span
	}
	e := c.load(learnerID)
	if e == nil {
		return nil, ErrNotCached
	}
	return SliceSchedule(e.schedule, startDay, daySpan)
}

// SliceSchedule returns the items of s whose day offset falls in
// [startDay, startDay+daySpan).
func SliceSchedule(s *domain.Schedule, startDay, daySpan int) (*domain.ScheduleSlice, error) {
	if startDay < 0 || startDay > MaxSliceDay || daySpan <= 0 || daySpan > MaxSliceDay {
		return nil, ErrInvalidRange
	}
	end := startDay + daySpan
	out := &domain.ScheduleSlice{
		LearnerID:       s.LearnerID,
		Version:         s.Version,
		GeneratedAt:     s.GeneratedAt,
		TimeHorizonDays: s.TimeHorizonDays,
		IsStale:         s.IsStale,
		Warnings:        append([]domain.Warning(nil), s.Warnings...),
		Items:           []domain.WorkItem{},
		Slice:           domain.SliceInfo{StartDay: startDay, DaySpan: daySpan, NextStartDay: end},
	}
	for _, it := range s.Items {
		switch {
		case it.DayOffset >= end:
			out.Slice.HasMore = true
		case it.DayOffset >= startDay:
			out.Items = append(out.Items, it.Clone())
		}
	}
	if out.Slice.HasMore && end <= MaxSliceDay {
		out.Slice.PageToken = EncodePageToken(PageToken{
			LearnerID: s.LearnerID,
			Version:   s.Version,
			Start:     end,
			Span:      daySpan,
		})
	}
	return out, nil
}

func flagStale(s *domain.Schedule, warn domain.Warning) *domain.Schedule {
	out := s.Clone()
	out.IsStale = true
	for _, w := range out.Warnings {
		if w == warn {
			return out
		}
	}
	out.Warnings = append(out.Warnings, warn)
	return out
}
