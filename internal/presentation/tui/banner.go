package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// Notifier prints one-line coloured notices, the terminal's stand-in for toasts.
type Notifier struct {
	out *termenv.Output
}

// NewNotifier writes to w. Pass termenv.WithProfile(termenv.Ascii) to drop colours.
func NewNotifier(w io.Writer, opts ...termenv.OutputOption) *Notifier {
	return &Notifier{out: termenv.NewOutput(w, opts...)}
}

// Success prints a green notice.
func (n *Notifier) Success(msg string) { n.print("✓", "#22c55e", msg) }

// Error prints a red notice.
func (n *Notifier) Error(msg string) { n.print("✗", "#ef4444", msg) }

// Info prints a blue notice.
func (n *Notifier) Info(msg string) { n.print("•", "#60a5fa", msg) }

func (n *Notifier) print(mark, color, msg string) {
	s := n.out.String(mark + " " + msg).Foreground(n.out.Color(color))
	fmt.Fprintln(n.out, s)
}

// Banner prints the application banner.
func (n *Notifier) Banner() {
	lines := []struct{ text, color string }{
		{"   __ _ ___ ___(_)___| |_ ", "#818cf8"},
		{"  / _` / __/ __| / __| __|", "#a78bfa"},
		{" | (_| \\__ \\__ \\ \\__ \\ |_ ", "#c084fc"},
		{"  \\__,_|___/___/_|___/\\__|", "#f472b6"},
	}
	fmt.Fprintln(n.out)
	for _, l := range lines {
		fmt.Fprintln(n.out, n.out.String(l.text).Foreground(n.out.Color(l.color)))
	}
	fmt.Fprintln(n.out)
}
