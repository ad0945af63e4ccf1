package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	if NormalizeRole(" Organizer ") != RoleOrganizer {
		t.Fatal("expected organizer")
	}
	if NormalizeRole("property-owner") != RolePropertyOwner {
		t.Fatal("expected property-owner")
	}
	if NormalizeRole("superuser") != RoleUser {
		t.Fatal("unknown roles normalize to user")
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole("doctor", RoleDoctor, RoleAdmin) {
		t.Fatal("expected doctor to match")
	}
	if HasRole("user", RoleOrganizer) {
		t.Fatal("user must not match organizer")
	}
	if HasRole("admin") {
		t.Fatal("empty allow set must deny")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{"user", "organizer", "doctor", "property-owner", "admin"} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	if ValidRole("editor") {
		t.Fatal("editor is not in the role set")
	}
}
