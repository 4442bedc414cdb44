package domain

// Access levels. Lower is more privileged.
const (
	LevelSuper = 0
	LevelAdmin = 1
	LevelUser  = 2
)

// UserRecord is one row of the backing user store. The password field holds
// the stored secret and never leaves the core layers.
type UserRecord struct {
	UserID    string
	Username  string
	Password  string
	UserLevel int
	UserGroup int
}

// UserView is the subset of a user record exposed to session consumers.
// Session entries hold an immutable snapshot of this shape: later edits to
// the underlying record are not reflected until the user re-authenticates.
type UserView struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	UserLevel int    `json:"user_level"`
	UserGroup int    `json:"user_group"`
}

// View returns the public projection of the record.
func (r *UserRecord) View() UserView {
	return UserView{
		UserID:    r.UserID,
		Username:  r.Username,
		UserLevel: r.UserLevel,
		UserGroup: r.UserGroup,
	}
}
