package chat

type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "Sign Up"
	}
	return "Login"
}

// AuthForm is the login/signup popup's transient input. Nothing here is
// persisted.
type AuthForm struct {
	Mode     Mode
	Username string
	Email    string
	Password string
}

// ToggleMode switches between login and signup and clears every field.
func (f *AuthForm) ToggleMode() {
	if f.Mode == ModeLogin {
		f.Mode = ModeSignup
	} else {
		f.Mode = ModeLogin
	}
	f.Username = ""
	f.Email = ""
	f.Password = ""
}
