package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldRule drives per-field validation of an incoming application.
// The table below is the single source of truth for the form: one
// static map instead of per-field annotations, consulted by a single
// validation function.
type FieldRule struct {
	Required bool
	Numeric  bool
	HasOther bool // resolves to "<field>Other" when the value is the sentinel "Other"
}

// OtherSentinel is the primary value that redirects to the free-text
// "<field>Other" companion field.
const OtherSentinel = "Other"

// ApplicationFields maps submission field names to their rules.
var ApplicationFields = map[string]FieldRule{
	"firstName":   {Required: true},
	"lastName":    {Required: true},
	"email":       {Required: true},
	"age":         {Required: true, Numeric: true},
	"gender":      {Required: true, HasOther: true},
	"nationality": {Required: true, HasOther: true},
	"country":     {Required: true},
	"city":        {Required: true},
	"university":  {Required: true, HasOther: true},
	"degree":      {Required: true, HasOther: true},
	"yearOfStudy": {Required: true, Numeric: true},
	"skills":      {},
}

// Submission is the validated, coerced form of a raw field map.
type Submission struct {
	Strings map[string]string
	Numbers map[string]int
}

// ValidateSubmission checks a raw field map against ApplicationFields.
// It returns the coerced submission, or the sorted list of failing
// field names. Resolution of a HasOther field: when the primary value
// is exactly the sentinel or absent, the "<field>Other" value is used;
// an empty companion falls back to the literal sentinel.
func ValidateSubmission(fields map[string]any) (*Submission, []string) {
	sub := &Submission{
		Strings: make(map[string]string),
		Numbers: make(map[string]int),
	}
	var failing []string

	for name, rule := range ApplicationFields {
		raw, present := fields[name]

		if rule.Numeric {
			n, ok := coerceInt(raw)
			if !ok || n < 0 {
				if present || rule.Required {
					failing = append(failing, name)
				}
				continue
			}
			sub.Numbers[name] = n
			continue
		}

		val := coerceString(raw)
		if rule.HasOther && (val == "" || val == OtherSentinel) {
			val = coerceString(fields[name+"Other"])
			if val == "" {
				val = OtherSentinel
			}
		}

		if val == "" {
			if rule.Required {
				failing = append(failing, name)
			}
			continue
		}
		sub.Strings[name] = val
	}

	if len(failing) > 0 {
		sort.Strings(failing)
		return nil, failing
	}
	return sub, nil
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// coerceInt accepts JSON numbers (float64), ints, and numeric strings.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// FailingFieldsMessage renders the failing list the way handlers
// surface it to applicants.
func FailingFieldsMessage(fields []string) string {
	return fmt.Sprintf("Invalid or missing fields: %s", strings.Join(fields, ", "))
}
