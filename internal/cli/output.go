package cli

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/pageviz/pkg/pipeline"
)

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot.svg, ...), it strips that.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "outline"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, f := range formatsByLength() {
		if strings.HasSuffix(output, "."+f) {
			return strings.TrimSuffix(output, "."+f)
		}
	}
	return output
}

// formatsByLength lists formats longest first so "dot.svg" wins over "svg".
func formatsByLength() []string {
	names := pipeline.FormatNames()
	slices.SortStableFunc(names, func(a, b string) int { return len(b) - len(a) })
	return names
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	stdout    io.Writer // for output "-"; os.Stdout when nil
}

// writeArtifacts writes each artifact and returns the paths written. A single
// format goes to output as given ("-" for stdout); several formats go to
// <base>.<format>.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 && (p.output == "-" || (p.output != "" && basePath(p.output, "") == p.output)) {
		return []string{p.output}, writeFile(p.output, p.artifacts[p.formats[0]], p.stdout)
	}

	base := basePath(p.output, p.input)
	var written []string
	for _, f := range p.formats {
		path := base + "." + f
		if err := writeFile(path, p.artifacts[f], p.stdout); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, data []byte, stdout io.Writer) error {
	out, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
