package widget

import (
	"fmt"
	"strings"
)

// Policy decides what happens to a submission made while another is in flight.
type Policy string

const (
	// PolicyReject fails the newer submission with ErrSubmissionPending.
	PolicyReject Policy = "reject"
	// PolicyReplace cancels the in-flight submission in favour of the newer one.
	PolicyReplace Policy = "replace"
	// PolicyQueue runs submissions one after another.
	PolicyQueue Policy = "queue"
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(value))); p {
	case "":
		return PolicyReject, nil
	case PolicyReject, PolicyReplace, PolicyQueue:
		return p, nil
	default:
		return "", fmt.Errorf("unknown submit policy %q", value)
	}
}
