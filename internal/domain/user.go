package domain

// User - account that can own a library. Read-only in libadmin.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Label is the text shown in owner selection controls.
func (u User) Label() string {
	switch {
	case u.Name == "":
		return u.Email
	case u.Email == "":
		return u.Name
	default:
		return u.Name + " - " + u.Email
	}
}
