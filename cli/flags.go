package cli

import (
	"github.com/cockroachdb/errors"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

// Flags represents command line flags
type Flags struct {
	Version        bool         `short:"v" long:"version"        description:"Print the program version"`
	LogLevel       logrus.Level `short:"l" long:"logLevel"       description:"Logging level. Can be from 0 (least verbose) to 6 (most verbose)"`
	ProgramCfgPath string       `short:"c" long:"programCfgPath" description:"Program config file path to read from or initialize a default"`
	MappingPath    string       `short:"m" long:"mappingPath"    description:"Mapping file path. Can be a local file or URL"`
	Backend        string       `short:"b" long:"backend"        description:"Backend to compile the mapping with, overrides config" choice:"xslt" choice:"sparql"`
	Input          string       `short:"i" long:"input"          description:"XML file, directory with XML files or .txt list of files for xslt backend; .txt list of subject IRI's (local file or URL) for sparql backend"`
	Subjects       []string     `short:"s" long:"subject"        description:"Subject IRI to evaluate the query for. Can be repeated"`
	OutputDir      string       `short:"o" long:"outputDir"      description:"Directory to write output documents to, overrides config"`
	CompileOnly    bool         `short:"C" long:"compileOnly"    description:"Print compiled stylesheet or query and exit"`
}

// Parse returns a structure initialized with command line arguments and error if parsing failed
func Parse() (Flags, error) {
	flags := Flags{
		// Set defaults
		LogLevel:       logrus.InfoLevel,
		ProgramCfgPath: "schemaorg_pipeline.yaml",
	}
	parser := goFlags.NewParser(&flags, goFlags.Options(goFlags.Default))
	_, err := parser.Parse()
	return flags, errors.Wrap(err, "Parse CLI arguments")
}

// IsErrOfType returns true if <err> is of type <t>
func IsErrOfType(err error, t goFlags.ErrorType) bool {
	goFlagsErr := &goFlags.Error{}
	if ok := errors.As(err, &goFlagsErr); ok && goFlagsErr.Type == t {
		return true
	}
	return false
}
