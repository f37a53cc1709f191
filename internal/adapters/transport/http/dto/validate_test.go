package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidator_StrongPassword(t *testing.T) {
	v := NewValidator()
	cases := map[string]bool{
		"Passw0rd!":     true,
		"Admin123!":     true,
		"short1A":       false,
		"alllowercase1": false,
		"ALLUPPERCASE1": false,
		"NoDigitsHere":  false,
	}
	for pwd, ok := range cases {
		err := v.Var(pwd, "strongpwd")
		if ok {
			require.NoError(t, err, pwd)
		} else {
			require.Error(t, err, pwd)
		}
	}
	require.Error(t, v.Var("A1"+strings.Repeat("a", 71), "strongpwd"), "over the bcrypt limit")
}

func TestValidator_Username(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Var("alice_01", "username"))
	require.Error(t, v.Var("al", "username"))
	require.Error(t, v.Var("alice!", "username"))
	require.Error(t, v.Var(strings.Repeat("a", 51), "username"))
}

func TestValidator_RegisterDTO(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Struct(RegisterDTO{Username: "alice", Email: "alice@x.com", Password: "Passw0rd!"}))
	require.Error(t, v.Struct(RegisterDTO{Username: "alice", Email: "not-an-email", Password: "Passw0rd!"}))
}

func TestValidator_UpdateDTOPointers(t *testing.T) {
	v := NewValidator()
	bad := "x"
	require.Error(t, v.Struct(UserUpdateDTO{Username: &bad}))
	require.NoError(t, v.Struct(UserUpdateDTO{}))

	d := "2024-13-45"
	require.Error(t, v.Struct(RFIUpdateDTO{Date: &d}))
}
