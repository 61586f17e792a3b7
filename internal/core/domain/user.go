package domain

import "strings"

// Role is the closed set of roles the gateway routes on.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps a backend-supplied role string onto the closed role set.
// It is the only role mapping in the repository; every flow that accepts a
// user record from the backend must pass the raw role through here.
//
//	"ADMIN"                                      → admin
//	"GROUND_WORKER", "DEPARTMENT_HEAD", "WORKER" → worker
//	anything else (including empty)              → citizen
func NormalizeRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN":
		return RoleAdmin
	case "GROUND_WORKER", "DEPARTMENT_HEAD", "WORKER":
		return RoleWorker
	default:
		return RoleCitizen
	}
}

// User is the canonical identity carried in session state and in the
// persisted credential record. Backend payloads are converted into this
// shape exactly once, at the API boundary.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Role    Role   `json:"role"`
	Address string `json:"address,omitempty"`
}

// BackendUser mirrors the loosely-typed user object the backend returns.
// The same concept may arrive under several field names (name vs fullName,
// phone vs mobile, id vs _id) depending on which endpoint produced it.
type BackendUser struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	Address  string `json:"address"`
}

// Normalize converts a backend user payload into the canonical User, filling
// display fields from alternate keys and applying role normalization. An
// empty identity (no id under either key) is rejected.
func (b BackendUser) Normalize() (User, error) {
	id := b.ID
	if id == "" {
		id = b.LegacyID
	}
	if id == "" {
		return User{}, ErrMalformedUser
	}

	name := b.Name
	if name == "" {
		name = b.FullName
	}
	if name == "" {
		name = b.Email
	}

	phone := b.Phone
	if phone == "" {
		phone = b.Mobile
	}

	return User{
		ID:      id,
		Name:    name,
		Email:   b.Email,
		Phone:   phone,
		Role:    NormalizeRole(b.Role),
		Address: b.Address,
	}, nil
}
