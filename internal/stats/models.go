package stats

import (
	"time"

	"emailstats/internal/constants"
)

// Counters are the four per-cycle tallies.
type Counters struct {
	ReceivedHome  int `json:"received_home" bson:"received_home"`
	ReceivedOther int `json:"received_other" bson:"received_other"`
	SentHome      int `json:"sent_home" bson:"sent_home"`
	SentOther     int `json:"sent_other" bson:"sent_other"`
}

func (c Counters) Total() int {
	return c.ReceivedHome + c.ReceivedOther + c.SentHome + c.SentOther
}

// Record is the persisted outcome of one collection cycle, keyed by (Day, Timestamp).
type Record struct {
	Day       string    `json:"day" bson:"day"`
	Timestamp time.Time `json:"timestamp" bson:"ts"`
	Counters  `bson:",inline"`
	CycleID   string `json:"cycle_id,omitempty" bson:"cycle_id,omitempty"`
}

// NewRecord stamps counters with ts truncated to milliseconds in UTC.
// Day is always the UTC calendar date of that instant.
func NewRecord(ts time.Time, c Counters, cycleID string) Record {
	ts = ts.UTC().Truncate(time.Millisecond)
	return Record{
		Day:       ts.Format(constants.DayLayout),
		Timestamp: ts,
		Counters:  c,
		CycleID:   cycleID,
	}
}
