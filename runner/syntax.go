package runner

import (
	"errors"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CheckSyntax parses text as bash and returns the first parse error.
// {{param}} placeholders parse as plain words.
func CheckSyntax(text string) error {
	_, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(text), "")
	var perr syntax.ParseError
	if errors.As(err, &perr) {
		return errors.New(perr.Text)
	}
	return err
}
