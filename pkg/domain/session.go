package domain

// Roles accepted by the registration endpoint.
const (
	RoleHelpSeeker  = "help_seeker"
	RoleHelpCreator = "help_creator"
)

// Roles lists the valid registration roles.
var Roles = []string{RoleHelpSeeker, RoleHelpCreator}

// HelpTypes lists the kinds of help a request may ask for.
var HelpTypes = []string{
	"Medical Assistance",
	"Food Support",
	"Shelter/Housing",
	"Education Support",
	"Financial Aid",
	"Other Basic Needs",
}

// User is the account object returned by the sign-in endpoint.
type User struct {
	ID        string `json:"_id" mapstructure:"_id"`
	FirstName string `json:"firstName,omitempty" mapstructure:"firstName"`
	LastName  string `json:"lastName,omitempty" mapstructure:"lastName"`
	Email     string `json:"email,omitempty" mapstructure:"email"`
	Role      string `json:"role,omitempty" mapstructure:"role"`
}

// NGO is one card of the assistance program list.
type NGO struct {
	ID          string `json:"_id" mapstructure:"_id"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
	Image       string `json:"image" mapstructure:"image"`
	CreatedBy   string `json:"createdBy,omitempty" mapstructure:"createdBy"`
}

// Session holds the values persisted after a successful sign-in.
// Presence of Token means "authenticated" for gating only; nothing is verified locally.
type Session struct {
	Token    string `json:"token,omitempty"`
	UserID   string `json:"userId,omitempty"`
	UserRole string `json:"userRole,omitempty"`
	UserData *User  `json:"userData,omitempty"`

	// Sealed holds an encrypted copy of the other fields when the store encrypts at rest.
	Sealed string `json:"sealed,omitempty"`
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	if s.UserData != nil {
		u := *s.UserData
		s.UserData = &u
	}
	return s
}

// Merge returns a copy of s with the non-zero fields of patch applied.
func (s Session) Merge(patch Session) Session {
	if patch.Token != "" {
		s.Token = patch.Token
	}
	if patch.UserID != "" {
		s.UserID = patch.UserID
	}
	if patch.UserRole != "" {
		s.UserRole = patch.UserRole
	}
	if patch.UserData != nil {
		u := *patch.UserData
		s.UserData = &u
	}
	return s
}

// DeferredIntent is a destination plus contextual data carried across a redirect
// so the original action can resume once the prerequisite is satisfied.
type DeferredIntent struct {
	Target  string `json:"target"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
