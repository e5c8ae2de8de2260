package domain

import "fmt"

// Status is the applicant lifecycle stage. Values are ordered: a lower
// value is an earlier stage, which lets callers compare with < and >=.
// Cancelled is a side branch and must never be compared by order.
type Status int

const (
	StatusVerified Status = iota + 1 // identity confirmed, no application yet
	StatusApplied                    // application submitted, awaiting review
	StatusReviewed                   // reached minimum review coverage
	StatusRejected                   // declined, or invite expired
	StatusInvited                    // invite sent, deadline set
	StatusConfirmed                  // invite accepted before deadline
	StatusAdmitted                   // checked in at the event
	StatusCancelled                  // applicant withdrew after applications closed
)

var statusNames = map[Status]string{
	StatusVerified:  "verified",
	StatusApplied:   "applied",
	StatusReviewed:  "reviewed",
	StatusRejected:  "rejected",
	StatusInvited:   "invited",
	StatusConfirmed: "confirmed",
	StatusAdmitted:  "admitted",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus converts the wire name back to a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// MarshalJSON renders the status by name so API consumers never see
// the ordinal values.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("status must be a JSON string")
	}
	parsed, err := ParseStatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
