package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns program cards and session summaries into terminal markdown.
type Renderer struct {
	r *glamour.TermRenderer
}

// NewRenderer builds a glamour renderer. With no options the style follows the terminal background.
func NewRenderer(opts ...glamour.TermRendererOption) (*Renderer, error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle(), glamour.WithWordWrap(80)}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &Renderer{r: r}, nil
}

// NGOs renders the program list.
func (r *Renderer) NGOs(ngos []domain.NGO) (string, error) {
	return r.r.Render(NGOMarkdown(ngos))
}

// Session renders who is signed in under a profile.
func (r *Renderer) Session(profile string, s domain.Session) (string, error) {
	return r.r.Render(SessionMarkdown(profile, s))
}

// NGOMarkdown lays out one section per program. An empty list gets a placeholder line.
func NGOMarkdown(ngos []domain.NGO) string {
	var b strings.Builder
	b.WriteString("# Assistance programs\n\n")
	if len(ngos) == 0 {
		b.WriteString("_No programs are available right now._\n")
		return b.String()
	}
	for _, n := range ngos {
		fmt.Fprintf(&b, "## %s\n\n", n.Title)
		if n.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", n.Description)
		}
		fmt.Fprintf(&b, "- id: `%s`\n", n.ID)
		if n.Image != "" {
			fmt.Fprintf(&b, "- image: %s\n", n.Image)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SessionMarkdown summarises a session without printing the token.
func SessionMarkdown(profile string, s domain.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Profile `%s`\n\n", profile)
	if !s.Authenticated() {
		b.WriteString("Not signed in.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "- user id: `%s`\n", s.UserID)
	fmt.Fprintf(&b, "- role: %s\n", s.UserRole)
	if u := s.UserData; u != nil {
		if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
			fmt.Fprintf(&b, "- name: %s\n", name)
		}
		if u.Email != "" {
			fmt.Fprintf(&b, "- email: %s\n", u.Email)
		}
	}
	return b.String()
}
