package entities

// DefaultAvatarURL is used when a profile has no image.
const DefaultAvatarURL = "https://i.pinimg.com/736x/f2/a0/e2/f2a0e2abaa5b3853f9cdfec4ec07cb8b.jpg"

// User is the public profile returned by login and /profile.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	AvatarURL string `json:"image_url,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"` // server local time, no zone
}

// Avatar returns whichever image field the server filled in.
func (u User) Avatar() string {
	switch {
	case u.ImageURL != "":
		return u.ImageURL
	case u.AvatarURL != "":
		return u.AvatarURL
	default:
		return DefaultAvatarURL
	}
}

// SignupRequest is the body of POST /users.
type SignupRequest struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PasswordConf string `json:"passwordConf"`
}

// LoginRequest is the body of POST /login. Identifier is a username or email.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the bearer token issued by the API.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
