package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormatter escribe resultados en texto o JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // logs de --verbose; nunca mezclados con la salida JSON
	Verbose   bool
}

// VerboseLog escribe en ErrWriter solo con --verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose && f.ErrWriter != nil {
		fmt.Fprintf(f.ErrWriter, format+"\n", args...)
	}
}

// Print escribe v como JSON indentado o, en modo texto, con text().
func (f *OutputFormatter) Print(v any, text func(io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(f.Writer)
	return nil
}
