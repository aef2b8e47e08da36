// Package prompt fills wizard steps interactively.
package prompt

import (
	"context"
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Asker abstracts the terminal so the driver can be tested without one.
type Asker interface {
	Input(ctx context.Context, message, def string) (string, error)
	Password(ctx context.Context, message string) (string, error)
	Select(ctx context.Context, message string, options []string, def string) (string, error)
}

// IsInteractive reports whether f is a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

type surveyAsker struct {
	opts []survey.AskOpt
}

// NewSurveyAsker prompts on the process terminal.
func NewSurveyAsker() Asker {
	return &surveyAsker{opts: []survey.AskOpt{survey.WithStdio(os.Stdin, os.Stdout, os.Stderr)}}
}

func (a *surveyAsker) Input(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out, a.opts...); err != nil {
		return "", translate(err)
	}
	return out, nil
}

func (a *surveyAsker) Password(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Password{Message: message}, &out, a.opts...); err != nil {
		return "", translate(err)
	}
	return out, nil
}

func (a *surveyAsker) Select(ctx context.Context, message string, options []string, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := &survey.Select{Message: message, Options: options}
	for _, o := range options {
		if o == def {
			p.Default = def
		}
	}
	var out string
	if err := survey.AskOne(p, &out, a.opts...); err != nil {
		return "", translate(err)
	}
	return out, nil
}

func translate(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
