package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		role Role
		op   Operation
		want string
	}{
		{Farmer, OpRegister, "farmers/new"},
		{Farmer, OpLogin, "farmers/login"},
		{Farmer, OpLogout, "farmers/logout"},
		{Farmer, OpVerifyEmail, "farmers/verify"},
		{Farmer, OpResendOTP, "farmers/resendOTP"},
		{Farmer, OpProfile, "farmers/me"},
		{Farmer, OpUpdateProfile, "farmers/update"},
		{Farmer, OpDeleteProfile, "farmers/delete"},
		{Farmer, OpForgotPassword, "farmers/forgot-password"},
		{Farmer, OpResetPassword, "farmers/reset-password"},
		{Farmer, OpListAll, "farmers/all"},
		{Buyer, OpRegister, "buyers/new"},
		{Buyer, OpLogin, "buyers/login"},
		{Buyer, OpResendOTP, "buyers/resendOTP"},
		{Supplier, OpLogin, "suppliers/login"},
		{Supplier, OpForgotPassword, "suppliers/forgot-password"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PathFor(tt.role, tt.op), "%s %v", tt.role, tt.op)
	}
}

// The farmer backend spells change-password without a hyphen; the other two
// backends use the hyphenated route. Both spellings are load-bearing.
func TestPathForChangePasswordIrregularity(t *testing.T) {
	assert.Equal(t, "farmers/changepassword", PathFor(Farmer, OpChangePassword))
	assert.Equal(t, "buyers/change-password", PathFor(Buyer, OpChangePassword))
	assert.Equal(t, "suppliers/change-password", PathFor(Supplier, OpChangePassword))
}

func TestProfileWithProductsPath(t *testing.T) {
	assert.Equal(t, "farmers/farmer/abc123", ProfileWithProductsPath(VendorFarmer, "abc123"))
	assert.Equal(t, "suppliers/supplier/s-9", ProfileWithProductsPath(VendorSupplier, "s-9"))
}

func TestParseRole(t *testing.T) {
	for _, role := range All() {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("farmer")
	assert.Error(t, err, "role names are case-sensitive wire values")
	_, err = ParseRole("Admin")
	assert.Error(t, err)
}

func TestBasePath(t *testing.T) {
	assert.Equal(t, "farmers", Farmer.BasePath())
	assert.Equal(t, "buyers", Buyer.BasePath())
	assert.Equal(t, "suppliers", Supplier.BasePath())
}
