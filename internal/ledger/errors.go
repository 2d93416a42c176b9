package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMember is returned when a record references a member outside
	// the supplied member list.
	ErrUnknownMember = errors.New("unknown member")
	// ErrMalformedSplit is returned for splits that cannot be folded, such as
	// negative amounts or a missing member.
	ErrMalformedSplit = errors.New("malformed split")
	// ErrInvalidAmount is returned for negative expense totals and non-positive
	// settlement amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrMissingPayer is returned when an expense or settlement has no payer.
	ErrMissingPayer = errors.New("missing payer")
	// ErrMissingReceiver is returned when a settlement has no receiver.
	ErrMissingReceiver = errors.New("missing receiver")
	// ErrSamePair is returned when a pairwise balance is requested for a
	// member against themselves.
	ErrSamePair = errors.New("cannot compute a balance with yourself")
)

// RecordKind names the record type an integrity problem was found on.
type RecordKind string

const (
	RecordExpense    RecordKind = "expense"
	RecordSettlement RecordKind = "settlement"
)

// IntegrityError describes an input record that cannot be reconciled.
// The whole computation is rejected when one is returned.
type IntegrityError struct {
	Record   RecordKind
	RecordID string
	// Index is the position of the record in the input slice.
	Index  int
	Member MemberID
	Err    error
}

func (e *IntegrityError) Error() string {
	id := e.RecordID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	if e.Member != "" {
		return fmt.Sprintf("%s %s: member %q: %v", e.Record, id, e.Member, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Record, id, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// WarningKind classifies a non-fatal integrity problem.
type WarningKind string

const (
	// WarningSplitSum means an expense's splits do not add up to its amount.
	WarningSplitSum WarningKind = "split_sum_mismatch"
	// WarningSelfSettlement means a settlement's payer and receiver are the same member.
	WarningSelfSettlement WarningKind = "self_settlement"
)

// Warning is a non-fatal problem found while accumulating. The computation
// still completes using the record as given.
type Warning struct {
	Kind     WarningKind
	Record   RecordKind
	RecordID string
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s", w.Record, w.RecordID, w.Message)
}
