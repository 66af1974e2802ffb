// Package printer renders posts for interactive display or structured
// output.
package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"lsedump/internal/lse"
)

var (
	usernameColor = color.New(color.FgGreen)
	tickerColor   = color.New(color.FgBlue)
	titleColor    = color.New(color.FgCyan)
	opinionColor  = color.New(color.FgYellow)
)

// Printer renders posts and tracks how many it has emitted. The crawl loop
// reads the count to enforce the --posts_max cutoff.
type Printer struct {
	out     io.Writer
	asJSON  bool
	printed int
}

// New creates a printer. With asJSON set, each post is emitted as one JSON
// object per line instead of the colorized display form.
func New(out io.Writer, asJSON bool) *Printer {
	return &Printer{out: out, asJSON: asJSON}
}

// Print renders one post
func (p *Printer) Print(post *lse.Post) error {
	p.printed++

	if p.asJSON {
		return json.NewEncoder(p.out).Encode(post)
	}

	header := fmt.Sprintf("%s%s @%s %-20s %s",
		usernameColor.Sprint(post.Username),
		tickerColor.Sprintf(" [%s]", post.Ticker),
		post.Price,
		fmt.Sprintf("(%s)", post.Date),
		titleColor.Sprint(post.Title),
	)
	if post.Opinion != "" {
		header += opinionColor.Sprintf(" <%s>", post.Opinion)
	}

	_, err := fmt.Fprintf(p.out, "%s\n%s\n\n", header, post.Text)
	return err
}

// Printed returns the number of posts emitted so far
func (p *Printer) Printed() int {
	return p.printed
}
