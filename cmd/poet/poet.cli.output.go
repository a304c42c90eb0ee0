package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorName = color.New(color.FgCyan, color.Bold)
	colorOK   = color.New(color.FgGreen)
	colorFail = color.New(color.FgRed, color.Bold)
	colorRole = color.New(color.FgYellow)
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", JSONIndent)
	if err != nil {
		return commandError(ExitCodeError, ErrMsgJSONMarshalFailed, err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
