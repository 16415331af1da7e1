// Package validate maps externally-presented request fields onto
// internal domain records, enforcing the field-level invariants of
// spec.md §4.4 and producing structured field violations instead of
// opaque errors.
package validate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/flwr-dev/superlink/internal/ids"
	"github.com/flwr-dev/superlink/internal/objects"
)

// AncestrySeparator is the fixed separator the translation step uses
// to concatenate a multi-element ancestry list into the single string
// stored by the Store, and to split it back apart on the way out
// (spec.md §4.4).
const AncestrySeparator = ", "

// FieldViolation names a single field-level validation failure. The
// Field path matches the wire shape the request came in on, e.g.
// "task_ins_list.task.pushed_at".
type FieldViolation struct {
	Field       string
	Description string
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Description)
}

// Violations collects zero or more FieldViolation. A nil/empty
// Violations means the request was valid.
type Violations []FieldViolation

func (vs Violations) Error() string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(v.String())
	}
	return b.String()
}

func (vs *Violations) add(field, description string) {
	*vs = append(*vs, FieldViolation{Field: field, Description: description})
}

// IngressTask carries the wire-level fields of a TaskIns or TaskRes
// before they are checked; it mirrors objects.Task but also carries
// the wire TaskID, so validation can run before translation.
type IngressTask struct {
	Producer    objects.NodeRef
	Consumer    objects.NodeRef
	CreatedAt   float64
	DeliveredAt string
	PushedAt    float64
	TTL         float64
	Ancestry    []string
	TaskType    string
	Payload     objects.Payload
	TaskID      string // must be empty on ingress; server-assigned
}

// Kind distinguishes the two ingress shapes: an instruction's
// ancestry must be empty, a result's must be non-empty.
type Kind int

const (
	// KindInstruction is a Driver-pushed TaskIns.
	KindInstruction Kind = iota
	// KindResult is a Fleet-pushed TaskRes.
	KindResult
)

// ValidateIngressTask checks a single task against spec.md §4.4's
// rule table and returns the field violations found, prefixed with
// fieldPrefix (e.g. "task_ins_list.task" or "task_res_list.task").
func ValidateIngressTask(t IngressTask, kind Kind, now time.Time, messageExpiresAfter time.Duration, fieldPrefix string) Violations {
	var vs Violations

	if err := t.Producer.Validate(); err != nil {
		vs.add(fieldPrefix+".producer", err.Error())
	}
	if err := t.Consumer.Validate(); err != nil {
		vs.add(fieldPrefix+".consumer", err.Error())
	}

	createdAtFloor := math.Floor(t.CreatedAt)
	nowFloor := math.Floor(float64(now.Unix()))
	if createdAtFloor > nowFloor {
		vs.add(fieldPrefix+".created_at", "must not be in the future")
	} else if nowFloor-createdAtFloor > messageExpiresAfter.Seconds() {
		vs.add(fieldPrefix+".created_at", fmt.Sprintf("message has expired (older than %s)", messageExpiresAfter))
	}

	if t.DeliveredAt != "" {
		vs.add(fieldPrefix+".delivered_at", "must be empty on ingress")
	}

	if t.PushedAt != 0 {
		vs.add(fieldPrefix+".pushed_at", "must be zero on ingress (server-assigned)")
	}

	if t.TTL <= 0 {
		vs.add(fieldPrefix+".ttl", "must be strictly positive")
	}

	if t.TaskType == "" {
		vs.add(fieldPrefix+".task_type", "must not be empty")
	}

	switch kind {
	case KindInstruction:
		if len(t.Ancestry) != 0 {
			vs.add(fieldPrefix+".ancestry", "must be empty for a task instruction")
		}
	case KindResult:
		if len(t.Ancestry) == 0 {
			vs.add(fieldPrefix+".ancestry", "must be non-empty for a task result")
		}
	}

	if err := t.Payload.Validate(); err != nil {
		vs.add(fieldPrefix+".payload", err.Error())
	}

	if t.TaskID != "" {
		vs.add(fieldPrefix+".task_id", "must be empty on ingress (server-assigned)")
	}

	return vs
}

// ValidatePingInterval enforces "finite, > 0" (spec.md §4.4).
func ValidatePingInterval(seconds float64, field string) Violations {
	var vs Violations
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		vs.add(field, "must be a finite number greater than zero")
	}
	return vs
}

// ValidateUUIDs checks that every id in ids is parseable as a UUID
// (PullTaskRes.task_ids, spec.md §4.4).
func ValidateUUIDs(values []string, field string) Violations {
	var vs Violations
	for i, v := range values {
		if _, err := ids.ParseSimple(v); err != nil {
			vs.add(fmt.Sprintf("%s[%d]", field, i), "must be a valid UUID")
		}
	}
	return vs
}

// JoinAncestry concatenates a wire ancestry list into the single
// string the Store persists.
func JoinAncestry(ancestry []string) string {
	return strings.Join(ancestry, AncestrySeparator)
}

// SplitAncestry reverses JoinAncestry for outbound serialisation. An
// empty stored string yields a nil slice.
func SplitAncestry(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, AncestrySeparator)
}
