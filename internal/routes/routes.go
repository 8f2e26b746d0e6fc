// Package routes maps user roles to the backend URL namespaces they own.
//
// The three role backends are structurally identical but path-distinct; every
// operation below exists once per role. The mapping is kept as an explicit
// table because it mirrors a deployed contract, irregular spellings included.
package routes

import "fmt"

// Role is the closed set of account types the backend serves. Using a tagged
// type instead of strings makes an invalid role unrepresentable past parsing.
type Role int

const (
	Farmer Role = iota
	Buyer
	Supplier
)

// All lists every role, in a stable order.
func All() []Role {
	return []Role{Farmer, Buyer, Supplier}
}

func (r Role) String() string {
	switch r {
	case Farmer:
		return "Farmer"
	case Buyer:
		return "Buyer"
	case Supplier:
		return "Supplier"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// BasePath is the URL segment the role's backend is mounted under.
func (r Role) BasePath() string {
	switch r {
	case Farmer:
		return "farmers"
	case Buyer:
		return "buyers"
	case Supplier:
		return "suppliers"
	}
	return ""
}

// ParseRole accepts the role names as users type them (case-sensitive,
// matching the wire values the backend expects).
func ParseRole(s string) (Role, error) {
	switch s {
	case "Farmer":
		return Farmer, nil
	case "Buyer":
		return Buyer, nil
	case "Supplier":
		return Supplier, nil
	}
	return 0, fmt.Errorf("unknown role %q (want Farmer, Buyer or Supplier)", s)
}

// Operation enumerates every role-scoped endpoint.
type Operation int

const (
	OpRegister Operation = iota
	OpLogin
	OpLogout
	OpVerifyEmail
	OpResendOTP
	OpProfile
	OpUpdateProfile
	OpDeleteProfile
	OpChangePassword
	OpForgotPassword
	OpResetPassword
	OpListAll
)

// suffixes holds the per-operation path suffix shared by all roles.
// OpChangePassword is absent on purpose: its spelling is role-dependent and
// handled in PathFor.
var suffixes = map[Operation]string{
	OpRegister:       "new",
	OpLogin:          "login",
	OpLogout:         "logout",
	OpVerifyEmail:    "verify",
	OpResendOTP:      "resendOTP",
	OpProfile:        "me",
	OpUpdateProfile:  "update",
	OpDeleteProfile:  "delete",
	OpForgotPassword: "forgot-password",
	OpResetPassword:  "reset-password",
	OpListAll:        "all",
}

// PathFor resolves the relative path for one operation on one role's backend.
//
// The farmer backend registered its change-password route without the hyphen;
// the other two use the hyphenated form. This is the deployed contract, so it
// stays a literal table entry rather than something derived.
func PathFor(role Role, op Operation) string {
	if op == OpChangePassword {
		if role == Farmer {
			return role.BasePath() + "/changepassword"
		}
		return role.BasePath() + "/change-password"
	}
	return role.BasePath() + "/" + suffixes[op]
}

// VendorRole restricts an operation to the two roles that sell products.
// There is no buyer variant of the profile-with-products endpoint, so the
// restriction lives in the type system instead of a runtime check.
type VendorRole struct {
	role Role
}

var (
	VendorFarmer   = VendorRole{Farmer}
	VendorSupplier = VendorRole{Supplier}
)

// Role unwraps the underlying role.
func (v VendorRole) Role() Role {
	return v.role
}

func (v VendorRole) slug() string {
	if v.role == Farmer {
		return "farmer"
	}
	return "supplier"
}

// ProfileWithProductsPath builds the public vendor profile path, e.g.
// "farmers/farmer/<id>" or "suppliers/supplier/<id>".
func ProfileWithProductsPath(v VendorRole, id string) string {
	return v.role.BasePath() + "/" + v.slug() + "/" + id
}
