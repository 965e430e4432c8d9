// Package output provides adapters for writing application output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// workflowEscaper escapes message data of GitHub Actions workflow commands.
var workflowEscaper = strings.NewReplacer(
	"%", "%25",
	"\r", "%0D",
	"\n", "%0A",
)

// Writer writes GitHub Actions workflow commands to the configured output
// destination. By default, it writes to stdout, where the runner picks them up.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// ReportError writes msg as an error annotation.
func (w *Writer) ReportError(msg string) error {
	return w.command("error", msg)
}

// ReportFailed writes the failure marker of the run. The runner shows it as
// an error annotation; the process exit code marks the step as failed.
func (w *Writer) ReportFailed(msg string) error {
	return w.command("error", msg)
}

func (w *Writer) command(name, msg string) error {
	_, err := fmt.Fprintf(w.out, "::%s::%s\n", name, workflowEscaper.Replace(msg))
	return err
}
