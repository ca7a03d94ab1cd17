package session

import "time"

// Mode identifies which kind of timer produced a record.
type Mode string

const (
	ModeTimer     Mode = "timer"
	ModeStopwatch Mode = "stopwatch"
)

// Tag is a user-defined label with a display color.
type Tag struct {
	ID    string
	Name  string
	Color string
}

// TagRef is the tag snapshot embedded in a record. It is a copy taken
// when the session is saved; renaming or deleting the tag afterwards
// does not change historical records.
type TagRef struct {
	Name  string
	Color string
}

// Record is one finished focus session. Immutable once written; the
// store assigns ID and CreatedAt at write time so client clock skew
// cannot corrupt the timeline.
type Record struct {
	ID        string
	CreatedAt time.Time
	Duration  float64 // minutes actually focused, may be fractional
	Tag       *TagRef // nil when the session was untagged
	Completed bool
	Mode      Mode
}

// Input is a record before the store has assigned id and creation time.
type Input struct {
	Duration  float64
	Tag       *TagRef
	Completed bool
	Mode      Mode
}
