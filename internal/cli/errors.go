package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/draze/draze-cli/internal/fetch"
	"github.com/draze/draze-cli/internal/mutate"
)

const loginHint = `Log in with "draze login <role> --token <token>".`

// printError writes err for a person. Validation failures are listed one field per
// line and a missing or rejected session ends with the login hint.
func printError(w io.Writer, err error) {
	var fe mutate.FieldErrors
	switch {
	case errors.As(err, &fe):
		fmt.Fprintln(w, "Error: invalid input")
		for _, f := range fe.Fields() {
			fmt.Fprintf(w, "  %s: %s\n", f, fe[f])
		}
	case fetch.Unauthenticated(err):
		fmt.Fprintf(w, "Error: %v\n%s\n", err, loginHint)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func errorJSON(err error) map[string]any {
	out := map[string]any{
		"error": err.Error(),
	}
	var fe mutate.FieldErrors
	if errors.As(err, &fe) {
		out["fields"] = fe
	}
	if fetch.Unauthenticated(err) {
		out["login"] = true
	}
	return out
}
