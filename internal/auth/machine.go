// Package auth drives the multi-step authentication flow the mobile screens
// render: registration, OTP verification, login, and the two password-reset
// steps. The Machine is the only component allowed to mutate the step, the
// banner message, and the pending flag; screens read a Snapshot and call the
// operations below, nothing else.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/asaskevich/govalidator"

	"agrofarm/internal/routes"
	"agrofarm/internal/session"
)

// minOTPLength is the shortest code the client accepts. The backend issues
// six-digit codes; the client only rejects obviously short input and leaves
// real validation to the server.
const minOTPLength = 4

// Sessions is the slice of the session facade the machine drives. Declared on
// the consumer side so tests can substitute a fake.
type Sessions interface {
	Register(ctx context.Context, role routes.Role, profile session.RegistrationProfile) (session.Payload, error)
	Login(ctx context.Context, role routes.Role, creds session.Credentials) (session.Payload, error)
	VerifyEmail(ctx context.Context, role routes.Role, email, otp string) (session.Payload, error)
	ResendOTP(ctx context.Context, role routes.Role, email string) (session.Payload, error)
	ForgotPassword(ctx context.Context, role routes.Role, email, phone string) (session.Payload, error)
	ResetPassword(ctx context.Context, role routes.Role, email, phone, otp, newPassword string) (session.Payload, error)
}

// Machine is the authentication state machine. All operations are safe to
// call from the UI loop; the blocking network call happens inside the
// operation, so callers typically run them on their own goroutine and
// re-render from State when they return.
type Machine struct {
	mu       sync.Mutex
	sessions Sessions

	role        routes.Role
	step        Step
	mode        Mode
	message     Message
	pending     bool
	closed      bool
	form        Form
	otp         string
	newPassword string

	// gen invalidates in-flight completions: Open and Cancel bump it, so a
	// network call that resolves afterwards cannot touch the fresh state.
	gen uint64

	onLogin func(routes.Role)
}

// attempt carries an immutable copy of everything one network operation
// needs, taken under the lock when the operation starts.
type attempt struct {
	gen         uint64
	role        routes.Role
	form        Form
	otp         string
	newPassword string
}

// NewMachine starts at the credentials step in sign-in mode with the default
// role selected.
func NewMachine(sessions Sessions) *Machine {
	return &Machine{sessions: sessions, role: routes.Farmer}
}

// OnLogin registers the terminal success hook fired after a completed login.
// Navigation to the role's home screen hangs off this; it is external to the
// machine itself.
func (m *Machine) OnLogin(fn func(routes.Role)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogin = fn
}

// State returns the render snapshot.
func (m *Machine) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Role:    m.role,
		Step:    m.step,
		Mode:    m.mode,
		Message: m.message,
		Pending: m.pending,
	}
}

// SelectRole changes the role the next attempt targets. The role is fixed for
// the duration of one attempt, so the call is ignored while one is in flight.
func (m *Machine) SelectRole(role routes.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return
	}
	m.role = role
}

// SetMode toggles between sign-in and sign-up. Clears the banner.
func (m *Machine) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return
	}
	m.mode = mode
	m.message = Message{}
}

// SetForm replaces the collected form input.
func (m *Machine) SetForm(form Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return
	}
	m.form = form
}

// SetOTP records the code the user typed.
func (m *Machine) SetOTP(otp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return
	}
	m.otp = otp
}

// SetNewPassword records the replacement password for the reset step.
func (m *Machine) SetNewPassword(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending {
		return
	}
	m.newPassword = p
}

// Open resets the machine for a fresh presentation of the auth UI. Stale
// messages from a previous session never leak through; role selection is the
// one thing kept.
func (m *Machine) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.closed = false
	m.step = StepCredentials
	m.mode = ModeSignIn
	m.message = Message{}
	m.pending = false
	m.form = Form{}
	m.otp = ""
	m.newPassword = ""
}

// Close marks the UI as torn down. Operations still in flight resolve as
// no-ops; the network request itself is not cancelled.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
}

// Cancel abandons any in-progress flow and returns to the credentials step in
// sign-in mode. Role selection survives; every other transient field is
// dropped, and an outstanding call for the abandoned step resolves as a
// no-op.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.gen++
	m.step = StepCredentials
	m.mode = ModeSignIn
	m.message = Message{}
	m.pending = false
	m.otp = ""
	m.newPassword = ""
}

// ForgotPasswordRequested moves from the credentials step to the
// forgot-password step. No network call happens until RequestReset.
func (m *Machine) ForgotPasswordRequested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.pending || m.step != StepCredentials {
		return
	}
	m.step = StepForgotPassword
	m.message = Message{}
}

// Submit validates the credentials form and runs sign-in or sign-up,
// depending on the current mode.
func (m *Machine) Submit(ctx context.Context) {
	a, mode, ok := m.beginCredentials()
	if !ok {
		return
	}

	if mode == ModeSignUp {
		_, err := m.sessions.Register(ctx, a.role, session.RegistrationProfile{
			Name:     a.form.Name,
			Email:    a.form.Email,
			Password: a.form.Password,
			Phone:    a.form.Phone,
			Address:  a.form.Address,
		})
		m.finish(a.gen, func(m *Machine) {
			if err != nil {
				m.message = Message{MessageError, err.Error()}
				return
			}
			m.message = Message{MessageSuccess, fmt.Sprintf("Registered as %s. Check your email for the verification code.", a.role)}
			m.step = StepOTPVerification
		})
		return
	}

	_, err := m.sessions.Login(ctx, a.role, session.Credentials{Email: a.form.Email, Password: a.form.Password})
	var loggedIn bool
	m.finish(a.gen, func(m *Machine) {
		if err != nil {
			m.message = Message{MessageError, err.Error()}
			return
		}
		m.message = Message{MessageSuccess, fmt.Sprintf("Logged in as %s.", a.role)}
		loggedIn = true
	})
	if loggedIn {
		m.mu.Lock()
		hook := m.onLogin
		m.mu.Unlock()
		if hook != nil {
			hook(a.role)
		}
	}
}

// beginCredentials validates and arms a credentials-step submission.
func (m *Machine) beginCredentials() (attempt, Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.pending || m.step != StepCredentials {
		return attempt{}, 0, false
	}
	if msg := validateCredentials(m.form, m.mode); msg != "" {
		m.message = Message{MessageError, msg}
		return attempt{}, 0, false
	}
	m.pending = true
	m.message = Message{}
	return m.snapshotAttempt(), m.mode, true
}

// Verify redeems the typed OTP against the email captured at signup.
func (m *Machine) Verify(ctx context.Context) {
	a, ok := m.begin(StepOTPVerification, func(m *Machine) string {
		if len(m.otp) < minOTPLength {
			return "Please enter a valid OTP"
		}
		return ""
	})
	if !ok {
		return
	}

	_, err := m.sessions.VerifyEmail(ctx, a.role, a.form.Email, a.otp)
	m.finish(a.gen, func(m *Machine) {
		if err != nil {
			m.message = Message{MessageError, err.Error()}
			return
		}
		m.message = Message{MessageSuccess, "Email verified. Please log in."}
		m.step = StepCredentials
		m.mode = ModeSignIn
		m.otp = ""
	})
}

// Resend asks for a fresh verification code. Stays on the OTP step.
func (m *Machine) Resend(ctx context.Context) {
	a, ok := m.begin(StepOTPVerification, func(m *Machine) string {
		if m.form.Email == "" {
			return "Enter your email first"
		}
		return ""
	})
	if !ok {
		return
	}

	_, err := m.sessions.ResendOTP(ctx, a.role, a.form.Email)
	m.finish(a.gen, func(m *Machine) {
		if err != nil {
			m.message = Message{MessageError, err.Error()}
			return
		}
		m.message = Message{MessageSuccess, "OTP resent to your email"}
	})
}

// RequestReset starts the password reset: the backend emails a code to the
// account matching the captured email and phone.
func (m *Machine) RequestReset(ctx context.Context) {
	a, ok := m.begin(StepForgotPassword, func(m *Machine) string {
		if m.form.Email == "" || m.form.Phone == "" {
			return "Email and phone are required"
		}
		return ""
	})
	if !ok {
		return
	}

	_, err := m.sessions.ForgotPassword(ctx, a.role, a.form.Email, a.form.Phone)
	m.finish(a.gen, func(m *Machine) {
		if err != nil {
			m.message = Message{MessageError, err.Error()}
			return
		}
		m.message = Message{MessageSuccess, "Reset code sent to your email"}
		m.step = StepResetPassword
	})
}

// Reset redeems the emailed code for the new password. Email and phone carry
// over from the forgot-password step.
func (m *Machine) Reset(ctx context.Context) {
	a, ok := m.begin(StepResetPassword, func(m *Machine) string {
		if m.form.Email == "" || m.form.Phone == "" || m.otp == "" || m.newPassword == "" {
			return "All fields are required"
		}
		return ""
	})
	if !ok {
		return
	}

	_, err := m.sessions.ResetPassword(ctx, a.role, a.form.Email, a.form.Phone, a.otp, a.newPassword)
	m.finish(a.gen, func(m *Machine) {
		if err != nil {
			m.message = Message{MessageError, err.Error()}
			return
		}
		m.message = Message{MessageSuccess, "Password reset. Please log in."}
		m.step = StepCredentials
		m.mode = ModeSignIn
		m.otp = ""
		m.newPassword = ""
	})
}

// begin arms one network operation for the given step. It returns false when
// the machine is closed, busy, or on a different step; a non-empty validate
// result becomes the error banner and also stops the operation before any
// network traffic.
func (m *Machine) begin(step Step, validate func(*Machine) string) (attempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.pending || m.step != step {
		return attempt{}, false
	}
	if msg := validate(m); msg != "" {
		m.message = Message{MessageError, msg}
		return attempt{}, false
	}
	m.pending = true
	m.message = Message{}
	return m.snapshotAttempt(), true
}

// finish applies the outcome of one network operation. The pending flag drops
// on every path; a completion that outlived its generation (Open, Cancel or
// Close happened meanwhile) is discarded without touching anything.
func (m *Machine) finish(gen uint64, apply func(*Machine)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return
	}
	m.pending = false
	apply(m)
}

func (m *Machine) snapshotAttempt() attempt {
	return attempt{
		gen:         m.gen,
		role:        m.role,
		form:        m.form,
		otp:         m.otp,
		newPassword: m.newPassword,
	}
}

func validateCredentials(form Form, mode Mode) string {
	if form.Email == "" || form.Password == "" {
		return "Email and password are required"
	}
	if !govalidator.IsEmail(form.Email) {
		return "Please enter a valid email address"
	}
	if mode == ModeSignUp && (form.Name == "" || form.Phone == "" || form.Address == "") {
		return "All fields are required for signup"
	}
	return ""
}
