package auth

import "agrofarm/internal/routes"

// Step is the state machine position. Exactly one step is active at a time
// and only the machine itself transitions between them.
type Step int

const (
	StepCredentials Step = iota
	StepOTPVerification
	StepForgotPassword
	StepResetPassword
)

func (s Step) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepOTPVerification:
		return "otp-verification"
	case StepForgotPassword:
		return "forgot-password"
	case StepResetPassword:
		return "reset-password"
	}
	return "unknown"
}

// Mode selects between the two credential sub-modes. It is not a separate
// step: both validate and submit from StepCredentials, to different
// operations.
type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

// MessageKind classifies the single user-facing banner.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageError
	MessageSuccess
)

// Message is the at-most-one active form banner. A new operation clears the
// previous one before touching the network.
type Message struct {
	Kind MessageKind
	Text string
}

// Form holds everything the credentials step collects. Email and phone
// outlive the step: OTP verification and password reset reuse them.
type Form struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// Snapshot is what the UI renders from. It carries no behavior; the screens
// are a pure function of it.
type Snapshot struct {
	Role    routes.Role
	Step    Step
	Mode    Mode
	Message Message
	Pending bool
}
