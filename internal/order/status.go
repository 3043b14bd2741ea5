package order

import (
	"sort"
	"strings"

	"zidoyvelg-be/internal/auth"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusPaid      Status = "Paid"
	StatusShipped   Status = "Shipped"
	StatusDone      Status = "Done"
	StatusCancelled Status = "Cancelled"
)

var allStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDone, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// ParseStatus matches a known status case-insensitively.
func ParseStatus(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	for _, v := range allStatuses {
		if strings.EqualFold(trimmed, string(v)) {
			return v, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + s}
}

type actor uint8

const (
	actorStaff actor = 1 << iota
	actorOwner
)

// transitions is the complete lifecycle. Anything absent is invalid.
var transitions = map[Status]map[Status]actor{
	StatusPending: {
		StatusPaid:      actorStaff,
		StatusCancelled: actorStaff,
	},
	StatusPaid: {
		StatusShipped: actorStaff,
	},
	StatusShipped: {
		StatusDone: actorStaff | actorOwner,
	},
}

// NextStatuses lists the edges leaving from, in lifecycle order.
func NextStatuses(from Status) []Status {
	edges := transitions[from]
	out := make([]Status, 0, len(edges))
	for to := range edges {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

func rank(s Status) int {
	for i, v := range allStatuses {
		if v == s {
			return i
		}
	}
	return len(allStatuses)
}

// Authorize decides whether caller may move o to target.
//
// A caller who is neither staff nor the owner is Forbidden whatever the
// edge. Otherwise an edge missing from the table is an InvalidTransition,
// and an edge that exists but excludes the caller's role is Forbidden.
func Authorize(caller auth.Identity, o *Order, target Status) error {
	isStaff := caller.IsStaff()
	isOwner := caller.Owns(o.UserID)

	if !isStaff && !isOwner {
		return ErrForbidden
	}

	allowed, ok := transitions[o.Status][target]
	if !ok {
		return &TransitionError{From: o.Status, To: target}
	}

	if isStaff && allowed&actorStaff != 0 {
		return nil
	}
	if isOwner && allowed&actorOwner != 0 {
		return nil
	}
	return ErrForbidden
}
