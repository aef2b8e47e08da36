package client

import (
	"context"
	"fmt"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Registration is the body of the register call.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// Credentials is the body of the login call.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data member of a successful login.
type LoginResult struct {
	Token string      `mapstructure:"token"`
	User  domain.User `mapstructure:"user"`
}

// Session converts the login result into the values persisted after sign-in.
func (r *LoginResult) Session() domain.Session {
	u := r.User
	return domain.Session{
		Token:    r.Token,
		UserID:   u.ID,
		UserRole: u.Role,
		UserData: &u,
	}
}

// CreatorProfile is the multipart body of the creator profile upload.
type CreatorProfile struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Address         string
	Password        string
	ProfilePic      *domain.UploadedFile
	VerifyDocuments *domain.UploadedFile
}

// NGOProfile is the multipart body of the NGO creation call.
type NGOProfile struct {
	Title       string
	Description string
	Image       *domain.UploadedFile
	CreatedBy   string
}

// HelpRequest is the multipart body of a help request. Documents is optional.
type HelpRequest struct {
	NeedDescription string
	HelpType        string
	Location        string
	UserID          string
	Documents       *domain.UploadedFile
}

// Register creates an account. The returned payload is the raw data member.
func (c *Client) Register(ctx context.Context, r Registration) (any, error) {
	return c.postJSON(ctx, EndpointRegister, r)
}

// Login exchanges credentials for a token and the user object.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	data, err := c.postJSON(ctx, EndpointLogin, creds)
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := decode(data, &out); err != nil || out.Token == "" {
		c.logger.Warn("Login response without token", "err", err)
		return nil, &APIError{Endpoint: EndpointLogin.Name, StatusCode: 200, Message: EndpointLogin.Fallback, Err: err}
	}
	return &out, nil
}

// UploadCreatorProfile creates a help-creator account and returns its identifier,
// which later seeds the createdBy field of the NGO profile.
func (c *Client) UploadCreatorProfile(ctx context.Context, p CreatorProfile) (string, error) {
	data, err := c.postForm(ctx, EndpointCreator, []part{
		textPart("firstName", p.FirstName),
		textPart("lastName", p.LastName),
		textPart("email", p.Email),
		textPart("phoneNumber", p.PhoneNumber),
		textPart("address", p.Address),
		textPart("password", p.Password),
		filePart("profilePic", p.ProfilePic),
		filePart("verifyDocuments", p.VerifyDocuments),
	})
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `mapstructure:"_id"`
	}
	if err := decode(data, &created); err != nil || created.ID == "" {
		return "", &APIError{Endpoint: EndpointCreator.Name, StatusCode: 200, Message: EndpointCreator.Fallback, Err: err}
	}
	return created.ID, nil
}

// CreateNGO publishes an assistance program.
func (c *Client) CreateNGO(ctx context.Context, p NGOProfile) (any, error) {
	return c.postForm(ctx, EndpointNGO, []part{
		textPart("title", p.Title),
		textPart("description", p.Description),
		filePart("image", p.Image),
		textPart("createdBy", p.CreatedBy),
	})
}

// ListNGOs fetches the program cards. A response without a list yields an empty slice.
func (c *Client) ListNGOs(ctx context.Context) ([]domain.NGO, error) {
	data, err := c.do(ctx, EndpointListNGOs, nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		NGOs []domain.NGO `mapstructure:"Ngo"`
	}
	if err := decode(data, &out); err != nil {
		return nil, &APIError{Endpoint: EndpointListNGOs.Name, StatusCode: 200, Message: EndpointListNGOs.Fallback, Err: err}
	}
	if out.NGOs == nil {
		out.NGOs = []domain.NGO{}
	}
	return out.NGOs, nil
}

// CreateHelpRequest files a help request for the signed-in user.
func (c *Client) CreateHelpRequest(ctx context.Context, r HelpRequest) (any, error) {
	parts := []part{
		textPart("needDescription", r.NeedDescription),
		textPart("helpType", r.HelpType),
		textPart("location", r.Location),
		textPart("userId", r.UserID),
	}
	if r.Documents != nil {
		parts = append(parts, filePart("documents", r.Documents))
	}
	return c.postForm(ctx, EndpointHelp, parts)
}

func decode(data any, out any) error {
	if data == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	return nil
}
