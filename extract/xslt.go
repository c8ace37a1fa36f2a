package extract

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"
)

// XSLTProcessor represents Transformer running compiled stylesheet with external xsltproc executable
type XSLTProcessor struct {
	processor string
	sheetPath string
}

// NewXSLTProcessor returns new XSLTProcessor running <stylesheet> with <processor> executable.
//
// Stylesheet is written to a temporary file once, call Close to remove it.
func NewXSLTProcessor(processor string, stylesheet string) (*XSLTProcessor, error) {
	if _, err := exec.LookPath(processor); err != nil {
		return nil, errors.Wrapf(err, "Find XSLT processor %v", processor)
	}

	file, err := os.CreateTemp("", "schemaorg_pipeline_*.xsl")
	if err != nil {
		return nil, errors.Wrap(err, "Create stylesheet file")
	}
	defer file.Close()
	if _, err := file.WriteString(stylesheet); err != nil {
		os.Remove(file.Name())
		return nil, errors.Wrap(err, "Write stylesheet file")
	}

	return &XSLTProcessor{processor: processor, sheetPath: file.Name()}, nil
}

// Transform returns result of the stylesheet applied to XML document <input>.
//
// Can return errors defined in this package: ProcessorError.
func (p *XSLTProcessor) Transform(ctx context.Context, input []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.processor, p.sheetPath, "-")
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			procErr := ProcessorError{ExitCode: exitErr.ExitCode(), Stderr: truncate(strings.TrimSpace(stderr.String()))}
			return nil, errors.Wrap(procErr, "Run XSLT processor")
		}
		return nil, errors.Wrap(err, "Run XSLT processor")
	}
	return stdout.Bytes(), nil
}

// StylesheetPath returns path to the temporary stylesheet file
func (p *XSLTProcessor) StylesheetPath() string {
	return p.sheetPath
}

// Close removes temporary stylesheet file
func (p *XSLTProcessor) Close() error {
	return errors.Wrap(os.Remove(p.sheetPath), "Remove stylesheet file")
}
