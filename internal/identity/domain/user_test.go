package domain

import "testing"

func TestUser_Validate(t *testing.T) {
	testCases := []struct {
		name     string
		user     User
		wantErr  bool
		wantRole Role
	}{
		{"valid writer", User{Username: "a", PasswordHash: "h", Role: RoleWriter}, false, RoleWriter},
		{"empty role defaults", User{Username: "a", PasswordHash: "h"}, false, RoleReader},
		{"missing username", User{PasswordHash: "h"}, true, ""},
		{"missing hash", User{Username: "a"}, true, ""},
		{"unknown role", User{Username: "a", PasswordHash: "h", Role: "root"}, true, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			err := u.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && u.Role != tc.wantRole {
				t.Errorf("Role = %q, want %q", u.Role, tc.wantRole)
			}
		})
	}
}
