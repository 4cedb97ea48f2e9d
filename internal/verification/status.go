package verification

import (
	"fmt"
	"strings"
)

// Status of a police verification record, as defined by the API.
type Status string

const (
	StatusUnderReview Status = "under_review"
	StatusVerified    Status = "verified"
	StatusRejected    Status = "rejected"
)

var transitions = map[Status]map[Status]struct{}{
	StatusUnderReview: {StatusVerified: {}, StatusRejected: {}},
}

// CanTransition reports whether a record may move from one status to another. Verified
// and rejected are final.
func CanTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusUnderReview, StatusVerified, StatusRejected:
		return st, nil
	case "pending", "under review":
		return StatusUnderReview, nil
	}
	return "", fmt.Errorf("unknown verification status %q", s)
}

func (s Status) Final() bool {
	return s == StatusVerified || s == StatusRejected
}

func (s Status) Label() string {
	switch s {
	case StatusUnderReview:
		return "Under review"
	case StatusVerified:
		return "Verified"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}
