package prompt

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aretw0/assist/pkg/domain"
	"github.com/aretw0/assist/pkg/upload"
	"github.com/aretw0/assist/pkg/validation"
	"github.com/aretw0/assist/pkg/wizard"
)

// Driver walks a wizard to its last step, asking for whatever is missing or invalid.
type Driver struct {
	ask      Asker
	policies map[string]upload.Policy
	report   func(field, message string)
}

// Option configures a Driver.
type Option func(*Driver)

// WithFilePolicies marks fields as file slots; their answers are paths.
func WithFilePolicies(p map[string]upload.Policy) Option {
	return func(d *Driver) {
		d.policies = p
	}
}

// WithReporter receives every field error before the field is asked again.
func WithReporter(fn func(field, message string)) Option {
	return func(d *Driver) {
		d.report = fn
	}
}

// NewDriver creates a Driver.
func NewDriver(ask Asker, opts ...Option) *Driver {
	d := &Driver{ask: ask, report: func(string, string) {}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fill asks for the empty fields of each step, advancing until the last step validates.
// Values already present (from flags or a previous run) are not asked again unless invalid.
func (d *Driver) Fill(ctx context.Context, w *wizard.Wizard) error {
	pending := d.empty(w)
	for {
		for _, field := range pending {
			if err := d.askField(ctx, w, field); err != nil {
				return err
			}
		}
		last := w.Step() == w.Total()
		err := w.Advance(ctx)
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			pending = verr.Result.Fields()
			for _, f := range pending {
				d.report(f, verr.Result[f])
			}
		case err != nil:
			return err
		case last:
			return nil
		default:
			pending = d.empty(w)
		}
	}
}

// empty lists the current step's fields that hold nothing yet, in rule order.
func (d *Driver) empty(w *wizard.Wizard) []string {
	st := w.State()
	var out []string
	for _, f := range stepFields(w.Current()) {
		if v, _ := st.Get(f); v.IsZero() {
			out = append(out, f)
		}
	}
	return out
}

func (d *Driver) askField(ctx context.Context, w *wizard.Wizard, field string) error {
	label := validation.Label(field)
	if policy, ok := d.policies[field]; ok {
		return d.askFile(ctx, w, field, label, policy)
	}
	if opts := oneOf(w.Current(), field); len(opts) > 0 {
		v, err := d.ask.Select(ctx, label, opts, w.State().Text(field))
		if err != nil {
			return err
		}
		w.Set(field, v)
		return nil
	}
	var (
		v   string
		err error
	)
	if secret(field) {
		v, err = d.ask.Password(ctx, label)
	} else {
		v, err = d.ask.Input(ctx, label, w.State().Text(field))
	}
	if err != nil {
		return err
	}
	w.Set(field, v)
	return nil
}

// askFile repeats until a path is accepted. An empty answer leaves the slot empty
// and lets validation decide whether the file was optional.
func (d *Driver) askFile(ctx context.Context, w *wizard.Wizard, field, label string, policy upload.Policy) error {
	for {
		path, err := d.ask.Input(ctx, label+" (path)", "")
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			w.Detach(field)
			return nil
		}
		f, err := upload.FromPath(path)
		if err != nil {
			d.report(field, err.Error())
			continue
		}
		if err := w.Attach(field, f, policy); err != nil {
			d.report(field, upload.Reason(err))
			continue
		}
		return nil
	}
}

func stepFields(s wizard.Step) []string {
	fields := validation.Fields(s.Rules)
	for _, f := range s.Fields {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func oneOf(s wizard.Step, field string) []string {
	for _, r := range s.Rules {
		if r.Field == field && r.Kind == validation.KindOneOf {
			return r.Options
		}
	}
	return nil
}

func secret(field string) bool {
	return strings.Contains(strings.ToLower(field), "password")
}
