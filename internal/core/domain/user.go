package domain

// Role identifies which dashboard a user may reach.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User models an authenticated actor in the portal. The JSON shape is the one
// persisted under the session key, so field names must stay stable.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// ProfileUpdate carries the user-editable fields. Empty fields are left as is.
type ProfileUpdate struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == "" && p.Email == "" && p.Avatar == ""
}

// DemoUsers are the accounts every user store starts with.
func DemoUsers() []User {
	return []User{
		{
			ID:        "1",
			Email:     "teacher@example.com",
			Name:      "Dr. Sarah Johnson",
			Role:      RoleTeacher,
			CreatedAt: "2024-01-01T00:00:00Z",
		},
		{
			ID:        "2",
			Email:     "student@example.com",
			Name:      "Alex Smith",
			Role:      RoleStudent,
			CreatedAt: "2024-01-01T00:00:00Z",
		},
	}
}
