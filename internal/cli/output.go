package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// response is the JSON envelope for --format json.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

type output struct {
	format string
	w      io.Writer
}

// emit writes data as JSON, or calls text for the human format.
func (o output) emit(data any, text func(w io.Writer)) error {
	if o.format == "json" {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(response{Status: "ok", Data: data})
	}
	text(o.w)
	return nil
}

// fail reports err in the configured format and returns it for the exit
// code.
func (o output) fail(data any, err error) error {
	if o.format == "json" {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(response{Status: "error", Data: data, Error: err.Error()}); encErr != nil {
			return encErr
		}
		return err
	}
	fmt.Fprintf(o.w, "error: %v\n", err)
	return err
}
