package domain

// LoginRequest is the credential payload submitted by the login page.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the wire shape returned by authenticate. On success Token
// and User are set; on failure Message carries the user-facing text.
type AuthResponse struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message,omitempty"`
	Token   string    `json:"token,omitempty"`
	User    *UserView `json:"user,omitempty"`
}

// BasicResponse is the wire shape for operations that only report success.
type BasicResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ActionResponse is the wire shape returned by protected example actions.
type ActionResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
