package flows

import (
	"fmt"
	"slices"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/upload"
	"github.com/aretw0/assist/pkg/validation"
	"github.com/aretw0/assist/pkg/wizard"
)

// Flow names.
const (
	FlowRegistration   = "registration"
	FlowSignIn         = "signin"
	FlowCreatorProfile = "creator_profile"
	FlowNGOProfile     = "ngo_profile"
	FlowHelpRequest    = "help_request"
)

// FilePolicies maps every file slot of the built-in flows to the policy it is attached with.
var FilePolicies = map[string]upload.Policy{
	"profilePic":      upload.ImagePolicy,
	"verifyDocuments": upload.VerificationPolicy,
	"image":           upload.ImagePolicy,
	"documents":       upload.HelpDocumentPolicy,
}

// Catalog maps a flow to its ordered steps.
type Catalog map[string][]wizard.Step

// DefaultCatalog returns the built-in rule tables.
func DefaultCatalog() Catalog {
	return Catalog{
		FlowRegistration: {{
			Name: "account",
			Rules: []validation.Rule{
				validation.Required("firstName", "First name is required"),
				validation.Required("lastName", "Last name is required"),
				validation.Required("email", "Email is required"),
				validation.Email("email", validation.PatternStrict, "Email is invalid"),
				validation.Present("password", "Password is required"),
				validation.MinLength("password", 6, "Password must be at least 6 characters"),
				validation.Match("confirmPassword", "password", "Passwords do not match"),
				validation.OneOf("role", domain.Roles, "Please select a valid role"),
			},
		}},
		FlowSignIn: {{
			Name: "credentials",
			Rules: []validation.Rule{
				validation.Required("email", "Email is required"),
				validation.Email("email", validation.PatternStrict, "Email is invalid"),
				validation.Present("password", "Password is required"),
			},
		}},
		FlowCreatorProfile: {
			{
				Name: "personal",
				Rules: []validation.Rule{
					validation.Required("firstName", "First name is required"),
					validation.Required("lastName", "Last name is required"),
					validation.Required("email", "Email is required"),
					validation.Email("email", validation.PatternLoose, "Email is invalid"),
					validation.Required("phoneNumber", "Phone number is required"),
					validation.Present("password", "Password is required"),
				},
			},
			{
				Name: "documents",
				Rules: []validation.Rule{
					validation.Required("address", "Address is required"),
					validation.File("profilePic", "Profile picture is required"),
					validation.File("verifyDocuments", "Verification document is required"),
				},
			},
		},
		FlowNGOProfile: {{
			Name: "program",
			Rules: []validation.Rule{
				validation.Required("title", "Title is required"),
				validation.Required("description", "Description is required"),
				validation.File("image", "Image is required"),
				validation.Required("createdBy", "User ID is missing"),
			},
		}},
		FlowHelpRequest: {{
			Name: "request",
			Rules: []validation.Rule{
				validation.Required("needDescription", "Please describe your need in detail"),
				validation.Required("helpType", "Please select a help type"),
				validation.OneOf("helpType", domain.HelpTypes, "Please select a help type"),
				validation.Required("location", "Please provide your location"),
			},
			Fields: []string{"documents"},
		}},
	}
}

// Flows returns the flow names in a stable order.
func (c Catalog) Flows() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Override replaces the rules of one step. The table is compiled first so a typo
// fails at load time instead of at the first submission.
func (c Catalog) Override(flow, step string, rules []validation.Rule) error {
	steps, ok := c[flow]
	if !ok {
		return fmt.Errorf("unknown flow %q", flow)
	}
	if _, err := validation.New(rules); err != nil {
		return fmt.Errorf("flow %s step %s: %w", flow, step, err)
	}
	for i := range steps {
		if steps[i].Name == step {
			updated := slices.Clone(steps)
			updated[i].Rules = slices.Clone(rules)
			c[flow] = updated
			return nil
		}
	}
	return fmt.Errorf("flow %s has no step %q", flow, step)
}
