package reservation

// State is a step of a reservation attempt.
//
//	START -> LOCKS_ACQUIRING -> LOCKS_HELD -> DB_VERIFIED -> CONFIRMING -> COMMITTED
//	any   -> ROLLED_BACK -> FAILED
type State string

const (
	StateStart          State = "START"
	StateLocksAcquiring State = "LOCKS_ACQUIRING"
	StateLocksHeld      State = "LOCKS_HELD"
	StateDBVerified     State = "DB_VERIFIED"
	StateConfirming     State = "CONFIRMING"
	StateCommitted      State = "COMMITTED"
	StateRolledBack     State = "ROLLED_BACK"
	StateFailed         State = "FAILED"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}
