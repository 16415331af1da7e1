// Package objects defines the domain records that flow through the
// brokering state engine: runs, node references, task instructions
// and task results, and the payload they carry.
package objects

import (
	"errors"
	"fmt"
)

// RunID identifies a logical run created by a Driver. Always non-zero.
type RunID int64

// NodeID identifies a registered fleet node. Always non-zero.
type NodeID int64

// NodeRef is the tagged variant described by spec.md §9: a node
// reference is either identified (a concrete non-zero NodeID) or
// anonymous. The two fields are kept unexported so that the only way
// to build one is through Identified or Anonymous, preserving the
// tag instead of carrying a raw (id, anonymous) pair around.
type NodeRef struct {
	id        NodeID
	anonymous bool
}

// Identified returns a NodeRef naming a specific, non-zero node.
func Identified(id NodeID) NodeRef {
	return NodeRef{id: id, anonymous: false}
}

// Anonymous returns a NodeRef that does not name a specific node.
func Anonymous() NodeRef {
	return NodeRef{id: 0, anonymous: true}
}

// IsAnonymous reports whether the reference is the anonymous case.
func (n NodeRef) IsAnonymous() bool { return n.anonymous }

// ID returns the identified node's id. Only meaningful when
// !IsAnonymous(); returns 0 for the anonymous case.
func (n NodeRef) ID() NodeID { return n.id }

// Validate enforces the invariant of spec.md §3: anonymous implies
// id=0, identified implies id!=0.
func (n NodeRef) Validate() error {
	if n.anonymous {
		if n.id != 0 {
			return errors.New("anonymous node reference must have id=0")
		}
		return nil
	}
	if n.id == 0 {
		return errors.New("identified node reference must have a non-zero id")
	}
	return nil
}

func (n NodeRef) String() string {
	if n.anonymous {
		return "anonymous"
	}
	return fmt.Sprintf("node(%d)", n.id)
}

// ErrorRecord describes the error arm of a task Payload, including the
// synthesized "node unavailable" case (spec.md §4.1 step 3).
type ErrorRecord struct {
	Code    int32
	Reason  string
	Message string
}

// Well-known synthesized error codes. Values are local to SuperLink;
// they are not part of a shared error taxonomy with any connector.
const (
	ErrCodeUnknown         int32 = 0
	ErrCodeNodeUnavailable int32 = 1
)

// Payload is the tagged variant of spec.md §9: exactly one of
// Recordset or Error is populated.
type Payload struct {
	Recordset []byte
	Error     *ErrorRecord
}

// Validate enforces payload exclusivity.
func (p Payload) Validate() error {
	hasRecordset := len(p.Recordset) > 0
	hasError := p.Error != nil
	switch {
	case hasRecordset && hasError:
		return errors.New("payload must carry exactly one of recordset or error, got both")
	case !hasRecordset && !hasError:
		return errors.New("payload must carry exactly one of recordset or error, got neither")
	default:
		return nil
	}
}

// Task is the unified shape backing both TaskInstruction and
// TaskResult rows. Which table a Task lives in and the emptiness of
// Ancestry is what distinguishes the two (spec.md §3).
type Task struct {
	ID          string // UUID, simple hex form
	GroupID     string
	RunID       RunID
	Producer    NodeRef
	Consumer    NodeRef
	CreatedAt   float64 // seconds since epoch, as presented on ingress
	DeliveredAt string  // RFC3339, "" if undelivered
	PushedAt    float64 // seconds since epoch, server-assigned
	TTL         float64 // seconds, > 0
	Ancestry    []string
	TaskType    string
	Payload     Payload
}

// IsDelivered reports whether the task has been pulled by its
// consumer (instruction) or observed by its driver (result).
func (t Task) IsDelivered() bool { return t.DeliveredAt != "" }
