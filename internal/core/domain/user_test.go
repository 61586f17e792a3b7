package domain

import "testing"

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"GROUND_WORKER", RoleWorker},
		{"DEPARTMENT_HEAD", RoleWorker},
		{"CITIZEN", RoleCitizen},
		{"anything-else", RoleCitizen},
		{"admin", RoleAdmin},
		{"  worker  ", RoleWorker},
		{"", RoleCitizen},
	}

	for _, tc := range cases {
		if got := NormalizeRole(tc.in); got != tc.want {
			t.Fatalf("NormalizeRole(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestBackendUser_Normalize_AlternateKeys(t *testing.T) {
	u, err := BackendUser{
		LegacyID: "u42",
		FullName: "Ada Citizen",
		Email:    "ada@example.com",
		Mobile:   "+15550100",
		Role:     "DEPARTMENT_HEAD",
	}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if u.ID != "u42" {
		t.Fatalf("expected id from _id fallback, got %q", u.ID)
	}
	if u.Name != "Ada Citizen" {
		t.Fatalf("expected name from fullName fallback, got %q", u.Name)
	}
	if u.Phone != "+15550100" {
		t.Fatalf("expected phone from mobile fallback, got %q", u.Phone)
	}
	if u.Role != RoleWorker {
		t.Fatalf("expected role worker, got %s", u.Role)
	}
}

func TestBackendUser_Normalize_MissingIdentity(t *testing.T) {
	if _, err := (BackendUser{Email: "x@example.com"}).Normalize(); err != ErrMalformedUser {
		t.Fatalf("expected ErrMalformedUser, got %v", err)
	}
}

func TestBackendUser_Normalize_NameDefaultsToEmail(t *testing.T) {
	u, err := BackendUser{ID: "1", Email: "a@b.com", Role: "CITIZEN"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if u.Name != "a@b.com" {
		t.Fatalf("expected email as display name fallback, got %q", u.Name)
	}
}
