//go:generate go tool stringer -type=State -trimprefix=STATE_
package registration

type State int

const (
	STATE_EDITING State = iota
	STATE_VALIDATING
	STATE_AWAITING_PAYMENT
	STATE_PERSISTING
	STATE_NOTIFYING_BY_EMAIL
	STATE_COMPLETE
	STATE_FAILED
)
