package clicommand

import (
	"fmt"
	"io"
	"os"
)

// openPipelineInput resolves the pipeline document source: an explicit
// path argument, or standard input when none is given. This mirrors the
// file-or-stdin detection in the teacher's pipeline upload command
// (clicommand/pipeline_upload.go), trimmed to the two cases this engine
// actually needs (no default-path search list, since this isn't tied to
// a fixed repository layout).
func openPipelineInput(path string) (io.Reader, func() error, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening pipeline file %q: %w", path, err)
		}
		return f, f.Close, nil
	}
	return os.Stdin, func() error { return nil }, nil
}
