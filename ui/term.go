// Package ui is a line oriented terminal menu for ModemManager. Each screen
// prints a title, some rows and numbered choices, then reads one line of
// input to pick a choice.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Attr is how a row is emphasized
type Attr int

// row attributes
const (
	Normal Attr = iota
	Bold
	Standout
)

// Term is the terminal screens are drawn on
type Term struct {
	in       *bufio.Reader
	out      io.Writer
	bold     *color.Color
	standout *color.Color
}

// NewTerm returns a terminal reading lines from in and writing to out.
// Colors follow fatih/color, so they are off when out is not a terminal or
// NO_COLOR is set.
func NewTerm(in io.Reader, out io.Writer) *Term {
	return &Term{
		in:       bufio.NewReader(in),
		out:      out,
		bold:     color.New(color.Bold),
		standout: color.New(color.ReverseVideo),
	}
}

// Println writes one line with the given indent and attribute
func (t *Term) Println(indent int, attr Attr, text string) {
	switch attr {
	case Bold:
		text = t.bold.Sprint(text)
	case Standout:
		text = t.standout.Sprint(text)
	}
	fmt.Fprintf(t.out, "%v%v\n", strings.Repeat(" ", indent), text)
}

// Prompt writes prompt without a newline and reads the answer. Surrounding
// white space is removed. io.EOF is returned when input ends.
func (t *Term) Prompt(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(t.out, prompt)
	}

	line, err := t.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}
