// Package velocity spreads a production run over a date range so that
// publish dates look like organic growth.
package velocity

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/random"
)

// Mode selects how article volume is weighted across days.
type Mode string

const (
	ModeSteady       Mode = "STEADY"
	ModeRampUp       Mode = "RAMP_UP"
	ModeRandomSpikes Mode = "RANDOM_SPIKES"
)

const (
	rampStart        = 0.2
	rampEnd          = 1.0
	spikeProbability = 0.05
	spikeWeight      = 3.0
	noiseFloor       = 0.85
	noiseSpan        = 0.30
	weekendFactor    = 0.2

	peakHour         = 14.0
	businessHourSD   = 2.0
	allDayHourSD     = 4.0
	freshnessMonths  = 6
	freshnessDays    = 7
	freshnessHourMin = 9
	freshnessHourMax = 19
)

// Config controls the shape of a generated schedule.
type Config struct {
	Mode              Mode `json:"mode"`
	WeekendThrottle   bool `json:"weekend_throttle"`
	JitterMinutes     int  `json:"jitter_minutes"`
	BusinessHoursOnly bool `json:"business_hours_only"`
}

// ParseMode maps a user supplied name to a Mode. Unknown names fall back to STEADY.
func ParseMode(name string) Mode {
	switch Mode(strings.ToUpper(strings.TrimSpace(name))) {
	case ModeRampUp:
		return ModeRampUp
	case ModeRandomSpikes:
		return ModeRandomSpikes
	default:
		return ModeSteady
	}
}

// Scheduler generates publish schedules.
type Scheduler struct {
	rnd random.Source
	now func() time.Time
}

// New creates a Scheduler. A nil source uses random.Default().
func New(src random.Source) *Scheduler {
	return &Scheduler{rnd: random.OrDefault(src), now: time.Now}
}

// WithClock overrides the notion of "now" used by the freshness override.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Generate returns roughly total entries between start and end, sorted by
// publish date. The total is met in expectation only; days are rounded
// probabilistically. Degenerate input yields an empty schedule.
func (s *Scheduler) Generate(start, end time.Time, total int, cfg Config) []domain.ScheduleEntry {
	totalDays := int(end.Sub(start).Hours() / 24)
	if totalDays <= 0 || total <= 0 {
		return []domain.ScheduleEntry{}
	}

	weights := s.dayWeights(start, totalDays, cfg)
	var sum float64
	for _, w := range weights {
		sum += w
	}

	now := s.now()
	freshnessCutoff := now.AddDate(0, -freshnessMonths, 0)
	entries := make([]domain.ScheduleEntry, 0, total)

	for i, w := range weights {
		exact := w / sum * float64(total)
		count := int(math.Floor(exact))
		if s.rnd.Float64() < exact-float64(count) {
			count++
		}

		day := dayAt(start, i)
		for n := 0; n < count; n++ {
			publish := s.slotTime(day, cfg)
			modified := publish
			if publish.Before(freshnessCutoff) {
				modified = s.freshModified(now)
			}
			entries = append(entries, domain.ScheduleEntry{PublishDate: publish, ModifiedDate: modified})
		}
	}

	slices.SortStableFunc(entries, func(a, b domain.ScheduleEntry) int {
		return a.PublishDate.Compare(b.PublishDate)
	})
	return entries
}

func (s *Scheduler) dayWeights(start time.Time, totalDays int, cfg Config) []float64 {
	weights := make([]float64, totalDays)
	for i := range weights {
		var w float64
		switch cfg.Mode {
		case ModeRampUp:
			progress := 0.0
			if totalDays > 1 {
				progress = float64(i) / float64(totalDays-1)
			}
			w = rampStart + (rampEnd-rampStart)*progress
		case ModeRandomSpikes:
			w = 1.0
			if s.rnd.Float64() < spikeProbability {
				w = spikeWeight
			}
		default:
			w = 1.0
		}

		w *= noiseFloor + s.rnd.Float64()*noiseSpan

		if cfg.WeekendThrottle {
			switch dayAt(start, i).Weekday() {
			case time.Saturday, time.Sunday:
				w *= weekendFactor
			}
		}
		weights[i] = w
	}
	return weights
}

// slotTime picks a time of day on day, then applies jitter.
func (s *Scheduler) slotTime(day time.Time, cfg Config) time.Time {
	sd, lo, hi := allDayHourSD, 0, 23
	if cfg.BusinessHoursOnly {
		sd, lo, hi = businessHourSD, 9, 18
	}
	hour := int(math.Round(peakHour + s.gaussian()*sd))
	hour = min(max(hour, lo), hi)
	minute := s.rnd.IntN(60)

	t := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	if j := cfg.JitterMinutes; j > 0 {
		t = t.Add(time.Duration(s.rnd.IntN(2*j+1)-j) * time.Minute)
	}
	return t
}

// gaussian draws a standard normal value with the Box-Muller transform.
func (s *Scheduler) gaussian() float64 {
	u1 := 1 - s.rnd.Float64() // (0, 1]
	u2 := s.rnd.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// freshModified returns a recent working-hours timestamp no later than now.
func (s *Scheduler) freshModified(now time.Time) time.Time {
	d := now.AddDate(0, 0, -s.rnd.IntN(freshnessDays))
	hour := freshnessHourMin + s.rnd.IntN(freshnessHourMax-freshnessHourMin)
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, s.rnd.IntN(60), 0, 0, now.Location())
	if t.After(now) {
		return now
	}
	return t
}

func dayAt(start time.Time, offset int) time.Time {
	return time.Date(start.Year(), start.Month(), start.Day()+offset, 0, 0, 0, 0, start.Location())
}

// DayCount is the number of entries published on one calendar day.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Distribution groups entries by publish day in chronological order.
func Distribution(entries []domain.ScheduleEntry) []DayCount {
	out := []DayCount{}
	for _, e := range entries {
		date := e.PublishDate.Format(time.DateOnly)
		if n := len(out); n > 0 && out[n-1].Date == date {
			out[n-1].Count++
			continue
		}
		out = append(out, DayCount{Date: date, Count: 1})
	}
	return out
}
