package tags

import (
	"errors"
	"fmt"

	"github.com/flosch/pongo2/v6"
)

var (
	ErrSyntax    = errors.New("template syntax error")
	ErrNoRequest = errors.New("no request in template context")
	ErrNoLibrary = errors.New("template was not loaded through a tags.Library")
)

// tagError reports err from a directive at its position in the template.
func tagError(tag string, token *pongo2.Token, err error) *pongo2.Error {
	e := &pongo2.Error{Sender: "tag:" + tag, OrigError: err, Token: token}
	if token != nil {
		e.Filename = token.Filename
		e.Line = token.Line
		e.Column = token.Col
	}
	return e
}

// cause unwraps the error a directive raised while a template executed, so
// callers can match it with errors.Is.
func cause(err error) error {
	var pe *pongo2.Error
	if errors.As(err, &pe) && pe.OrigError != nil {
		if pe.Line > 0 {
			return fmt.Errorf("%s line %d: %w", pe.Sender, pe.Line, pe.OrigError)
		}
		return fmt.Errorf("%s: %w", pe.Sender, pe.OrigError)
	}
	return err
}
