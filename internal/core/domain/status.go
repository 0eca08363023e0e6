package domain

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	StatusRegistered TransactionStatus = "REGISTERED"
	StatusConfirmed  TransactionStatus = "CONFIRMED"
	StatusPending    TransactionStatus = "PENDING"
	StatusVoid       TransactionStatus = "VOID"
	StatusRejected   TransactionStatus = "REJECTED"
)

// AllStatuses lists every recognized transaction status.
var AllStatuses = []TransactionStatus{
	StatusRegistered,
	StatusConfirmed,
	StatusPending,
	StatusVoid,
	StatusRejected,
}

// Valid reports whether s is a recognized status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusConfirmed, StatusPending, StatusVoid, StatusRejected:
		return true
	}
	return false
}

// statusTransitions is the full transition table of the ledger state machine.
// VOID is terminal.
var statusTransitions = map[TransactionStatus][]TransactionStatus{
	StatusRegistered: {StatusConfirmed, StatusPending, StatusVoid},
	StatusPending:    {StatusConfirmed, StatusRegistered, StatusVoid},
	StatusConfirmed:  {StatusVoid},
	StatusVoid:       {},
	StatusRejected:   {StatusRegistered, StatusPending},
}

// CanTransition reports whether the state machine allows moving from current
// to next.
func CanTransition(current, next TransactionStatus) bool {
	for _, allowed := range statusTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from current.
func AllowedTransitions(current TransactionStatus) []TransactionStatus {
	allowed := statusTransitions[current]
	out := make([]TransactionStatus, len(allowed))
	copy(out, allowed)
	return out
}

// Field names used by the per-status mutable-field table and TransactionPatch.
const (
	FieldStudentID             = "studentID"
	FieldProgramID             = "programID"
	FieldEnrollmentID          = "enrollmentID"
	FieldPaymentDate           = "paymentDate"
	FieldPaymentMethod         = "paymentMethod"
	FieldBankName              = "bankName"
	FieldBankAccount           = "bankAccount"
	FieldExternalReceiptNumber = "externalReceiptNumber"
	FieldTotalAmount           = "totalAmount"
	FieldDiscountAmount        = "discountAmount"
	FieldFinalAmount           = "finalAmount"
	FieldNotes                 = "notes"
	FieldLineItems             = "lineItems"
)

var allMutableFields = []string{
	FieldStudentID, FieldProgramID, FieldEnrollmentID,
	FieldPaymentDate, FieldPaymentMethod,
	FieldBankName, FieldBankAccount, FieldExternalReceiptNumber,
	FieldTotalAmount, FieldDiscountAmount, FieldFinalAmount,
	FieldNotes, FieldLineItems,
}

// statusMutableFields maps each status to the set of fields an update may
// touch while the transaction is in that status. A confirmed transaction only
// accepts note edits; a voided one accepts nothing.
var statusMutableFields = map[TransactionStatus][]string{
	StatusRegistered: allMutableFields,
	StatusPending:    allMutableFields,
	StatusRejected:   allMutableFields,
	StatusConfirmed:  {FieldNotes},
	StatusVoid:       {},
}

// MutableFields returns the set of field names editable in the given status.
func MutableFields(status TransactionStatus) map[string]struct{} {
	fields := statusMutableFields[status]
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// CanDelete reports whether a transaction in the given status may be removed
// outright. Every other status must be voided instead, preserving the audit
// trail.
func CanDelete(status TransactionStatus) bool {
	return status == StatusRegistered || status == StatusPending
}
