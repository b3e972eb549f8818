package entities

// User is the identity resolved by the auth proxy in front of the service.
type User struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

const RoleAdmin = "admin"
