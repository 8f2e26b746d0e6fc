package session

// RegistrationProfile is the signup payload. Every field except ImageURL is
// required by the backend; the client-side check lives in the auth machine.
type RegistrationProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	ImageURL string `json:"imgURL,omitempty"`
}

// Credentials is the minimal login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate carries partial profile edits; empty fields are omitted so
// the backend keeps their current values.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	ImageURL string `json:"imgURL,omitempty"`
}

// Payload is the raw JSON success body of a backend call. The three role
// backends do not share response schemas, so the facade hands the document
// through untyped and extracts only what it owns (the token).
type Payload map[string]any

// tokenFields is the precedence order for pulling the bearer token out of a
// login response. The deployed backends disagree on the field name; the first
// non-empty candidate wins, and the order is part of the contract.
var tokenFields = [...]string{"token", "accessToken", "jwt"}

func extractToken(p Payload) string {
	for _, field := range tokenFields {
		if v, ok := p[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
