package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON writes v as JSON followed by a newline. Struct field order and
// sorted map keys make the output stable for equal inputs.
func writeJSON(w io.Writer, v interface{}, compact bool) error {
	var (
		data []byte
		err  error
	)
	if compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
