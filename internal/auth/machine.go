package auth

import "errors"

// ResetState is the client-side progression of the password-reset flow.
// The server endpoints enforce the same order through Redis state; this
// machine exists so the flow logic is testable on its own and so the
// frontend contract (which step may render) is written down once.
type ResetState int

const (
	// StateEmail: collecting the account email.
	StateEmail ResetState = iota
	// StateAwaitingOTP: a code was sent and is being typed in.
	StateAwaitingOTP
	// StateSettingPassword: the code checked out; holding a reset ticket.
	StateSettingPassword
	// StateDone: password rewritten.
	StateDone
)

func (s ResetState) String() string {
	switch s {
	case StateEmail:
		return "email"
	case StateAwaitingOTP:
		return "awaiting_otp"
	case StateSettingPassword:
		return "setting_password"
	case StateDone:
		return "done"
	}
	return "unknown"
}

var ErrBadTransition = errors.New("reset flow: step out of order")

// ResetFlow carries the state plus the artifacts each step produces.
type ResetFlow struct {
	State       ResetState
	Email       string
	ResetTicket string
}

// NewResetFlow starts at the email step.
func NewResetFlow() *ResetFlow { return &ResetFlow{State: StateEmail} }

// Submit moves Email → AwaitingOTP once an email has been accepted.
func (f *ResetFlow) Submit(email string) error {
	if f.State != StateEmail {
		return ErrBadTransition
	}
	if email == "" {
		return errors.New("reset flow: email required")
	}
	f.Email = email
	f.State = StateAwaitingOTP
	return nil
}

// CodeAccepted moves AwaitingOTP → SettingPassword with the server ticket.
func (f *ResetFlow) CodeAccepted(ticket string) error {
	if f.State != StateAwaitingOTP {
		return ErrBadTransition
	}
	if ticket == "" {
		return errors.New("reset flow: ticket required")
	}
	f.ResetTicket = ticket
	f.State = StateSettingPassword
	return nil
}

// PasswordSet moves SettingPassword → Done and drops the ticket.
func (f *ResetFlow) PasswordSet() error {
	if f.State != StateSettingPassword {
		return ErrBadTransition
	}
	f.ResetTicket = ""
	f.State = StateDone
	return nil
}

// Restart abandons the flow from any step; expiry and too many wrong
// codes both land here.
func (f *ResetFlow) Restart() {
	*f = ResetFlow{State: StateEmail}
}
