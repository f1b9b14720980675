package models

// User is an authenticated caller. Moderators may list all routes and
// perform terminal transitions.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsModerator bool   `json:"is_moderator"`
}

// RoleOf maps the moderator flag to the lifecycle machine's role.
func (u User) RoleOf() Role {
	if u.IsModerator {
		return RoleModerator
	}
	return RoleUser
}

// LoginRequest carries credentials for token issuance.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed bearer token and the user it represents.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
