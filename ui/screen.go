package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type row struct {
	indent int
	attr   Attr
	text   string
}

type choice struct {
	label string
	run   func(ctx context.Context) error
}

// Screen is one menu. Build is called on every redraw and fills in the
// rows and choices, so what is shown always reflects the current modem
// state.
type Screen struct {
	Title string
	Build func(ctx context.Context, s *Screen) error

	term    *Term
	rows    []row
	choices []choice
	notice  string
	done    bool
}

// NewScreen returns a screen drawn on term
func NewScreen(term *Term, title string, build func(ctx context.Context, s *Screen) error) *Screen {
	return &Screen{Title: title, Build: build, term: term}
}

// AddRow adds a line of text
func (s *Screen) AddRow(indent int, attr Attr, text string) {
	s.rows = append(s.rows, row{indent: indent, attr: attr, text: text})
}

// AddRowf adds a formatted line of text
func (s *Screen) AddRowf(indent int, attr Attr, format string, args ...any) {
	s.AddRow(indent, attr, fmt.Sprintf(format, args...))
}

// AddChoice adds a numbered choice. The shortcut is the number of choices
// added before it.
func (s *Screen) AddChoice(label string, attr Attr, run func(ctx context.Context) error) {
	shortcut := len(s.choices)
	s.choices = append(s.choices, choice{label: label, run: run})
	s.AddRowf(1, attr, "(%v) - %v", shortcut, label)
}

// Notify sets a message shown at the bottom of the next redraw
func (s *Screen) Notify(format string, args ...any) {
	s.notice = fmt.Sprintf(format, args...)
}

// Close makes Show return after the current choice completes
func (s *Screen) Close() {
	s.done = true
}

// Choices returns the labels of the choices of the last redraw
func (s *Screen) Choices() []string {
	ret := make([]string, len(s.choices))
	for i, c := range s.choices {
		ret[i] = c.label
	}
	return ret
}

func (s *Screen) draw(ctx context.Context) {
	s.rows = nil
	s.choices = nil

	var buildErr error
	if s.Build != nil {
		buildErr = s.Build(ctx, s)
	}

	s.term.Println(0, Bold, s.Title)
	s.term.Println(0, Normal, "")
	for _, r := range s.rows {
		s.term.Println(r.indent, r.attr, r.text)
	}
	if buildErr != nil {
		s.term.Println(1, Normal, "Error: "+buildErr.Error())
	}
	if s.notice != "" {
		s.term.Println(0, Normal, "")
		s.term.Println(1, Normal, s.notice)
		s.notice = ""
	}
	s.term.Println(1, Normal, "")
	s.term.Println(1, Normal, "(Q) - Quit / Previous")
}

// Show redraws the screen and runs choices until Q is entered, the screen
// is closed, input ends or ctx is canceled. Errors from choices are shown
// on the screen and do not end it.
func (s *Screen) Show(ctx context.Context) error {
	s.done = false

	for !s.done {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.draw(ctx)

		key, err := s.term.Prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if strings.EqualFold(key, "q") {
			return nil
		}

		n, err := strconv.Atoi(key)
		if err != nil || n < 0 || n >= len(s.choices) {
			continue
		}

		if err := s.choices[n].run(ctx); err != nil {
			s.Notify("Error: %v", err)
		}
	}

	return nil
}
