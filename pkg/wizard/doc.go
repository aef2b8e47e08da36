/*
Package wizard implements the step wizard that wraps a form session.

A Wizard owns one FormState and an ordered list of steps. Input events mutate
the state directly; Advance gates on the current step's rule table, Retreat is
unconditional, and Submit is only reachable from the last step.

	w, _ := wizard.New([]wizard.Step{identity, documents})
	w.Set("email", "ada@example.org")
	if err := w.Advance(ctx); err != nil {
		// w.Errors() holds the field messages
	}
*/
package wizard
