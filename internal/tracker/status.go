package tracker

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a tracked application.
type Status string

const (
	StatusFound              Status = "found"
	StatusApplied            Status = "applied"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusInterviewed        Status = "interviewed"
	StatusOffered            Status = "offered"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
)

// transitions maps each status to the statuses reachable from it. Rejection
// is reachable from every non-terminal stage.
var transitions = map[Status][]Status{
	StatusFound:              {StatusApplied, StatusRejected},
	StatusApplied:            {StatusInterviewScheduled, StatusRejected},
	StatusInterviewScheduled: {StatusInterviewed, StatusRejected},
	StatusInterviewed:        {StatusOffered, StatusRejected},
	StatusOffered:            {StatusAccepted, StatusRejected},
	StatusAccepted:           {},
	StatusRejected:           {},
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusFound,
		StatusApplied,
		StatusInterviewScheduled,
		StatusInterviewed,
		StatusOffered,
		StatusAccepted,
		StatusRejected,
	}
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitions[s]; !ok {
		return "", fmt.Errorf("unknown application status %q", raw)
	}
	return s, nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Next returns the statuses reachable from s.
func (s Status) Next() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

func (s Status) String() string {
	return string(s)
}
