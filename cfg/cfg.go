package cfg

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"schemaorg_pipeline/util/url"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

//go:embed default.yaml
var defCfgBytes []byte

// Root represents root settings of the program
type Root struct {
	General General   `koanf:"general"`
	XSLT    XSLTCfg   `koanf:"xslt"`
	SPARQL  SPARQLCfg `koanf:"sparql"`
}

// General represents general settings of the program
type General struct {
	// Backend specifies which backend to compile the mapping with
	Backend Backend `koanf:"backend"`

	// OutputDir represents directory to write output documents and run report to
	OutputDir string `koanf:"output_dir"`

	// MaxWorkers represents maximum amount of items processed at the same time
	MaxWorkers int `koanf:"max_workers"`
}

// XSLTCfg represents settings of the XML pipeline
type XSLTCfg struct {
	// Processor represents name or path of the xsltproc executable
	Processor string `koanf:"processor"`

	// OutputExt represents extension of the output documents
	OutputExt string `koanf:"output_ext"`

	// Prefixes represents namespace prefixes declared on every stylesheet, path expressions of the mapping can use
	// them to match elements of namespaced source documents
	Prefixes []Prefix `koanf:"prefixes"`
}

// SPARQLCfg represents settings of the RDF pipeline
type SPARQLCfg struct {
	// Endpoint represents SPARQL endpoint URL
	Endpoint string `koanf:"endpoint"`

	// RespTimeout represents maximum time to wait for the endpoint response
	RespTimeout time.Duration `koanf:"resp_timeout"`

	// Accept represents value of the Accept header of the endpoint request
	Accept string `koanf:"accept"`

	// OutputExt represents extension of the output documents
	OutputExt string `koanf:"output_ext"`

	// InstanceType represents source vocabulary type of the subject.
	//
	// Used if the mapping declares @type without a source name.
	InstanceType string `koanf:"instance_type"`

	// Prefixes represents namespace prefixes declared in every query
	Prefixes []Prefix `koanf:"prefixes"`
}

// Prefix represents namespace prefix declaration
type Prefix struct {
	Name string `koanf:"name"`
	IRI  string `koanf:"iri"`
}

// Backend represents mapping compiler backend
type Backend string

const (
	XSLT   Backend = "xslt"
	SPARQL Backend = "sparql"
)

// BadValueError represents error thrown if program config has invalid value
type BadValueError struct {
	Field  string
	Value  any
	Reason string
}

// Error is used to satisfy golang error interface
func (e BadValueError) Error() string {
	return fmt.Sprintf("Invalid value of %v: %v. %v", e.Field, e.Value, e.Reason)
}

// Init returns config instance and false if config at <cfgFilePath> already exist.
//
// If config does not exist, creates a default, returns empty instance and true.
//
// Fields missing in existing config are taken from the default one.
//
// Can return errors defined in this package: BadValueError.
func Init(log *logrus.Logger, cfgFilePath string) (Root, bool, error) {
	log.Info("Reading program config")

	var root Root

	ko := koanf.New(".")
	if err := ko.Load(rawbytes.Provider(defCfgBytes), yaml.Parser()); err != nil {
		return root, false, errors.Wrap(err, "Load default config")
	}

	// Load config file into koanf or create a new if not exist
	userKo := koanf.New(".")
	if err := userKo.Load(file.Provider(cfgFilePath), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("Config file not found, creating a default")
			if err := os.WriteFile(cfgFilePath, defCfgBytes, 0644); err != nil {
				return root, false, errors.Wrap(err, "Write default config")
			}
			return root, true, nil
		}
		return root, false, errors.Wrap(err, "Load config")
	}

	if missingFields := lo.Without(ko.Keys(), userKo.Keys()...); len(missingFields) > 0 {
		log.WithField("fields", strings.Join(missingFields, ", ")).Warn("Config is missing fields, using defaults")
	}
	if err := ko.Merge(userKo); err != nil {
		return root, false, errors.Wrap(err, "Merge config with defaults")
	}

	// Decode loaded config file into structure
	decoder := mapstructure.ComposeDecodeHookFunc(
		// Normalize backend name
		func(from, to reflect.Type, fromData any) (any, error) {
			if to == reflect.TypeOf(Backend("")) && from.Kind() == reflect.String {
				return Backend(strings.ToLower(strings.TrimSpace(reflect.ValueOf(fromData).String()))), nil
			}
			return fromData, nil
		},
		// Default decoders
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	err := ko.UnmarshalWithConf("", &root, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:           decoder,
			ErrorUnused:          true,
			IgnoreUntaggedFields: true,
			Result:               &root,
			WeaklyTypedInput:     true,
			ZeroFields:           true,
		},
	})
	if err != nil {
		return Root{}, false, errors.Wrap(err, "Decode config")
	}

	if err := root.Validate(); err != nil {
		return Root{}, false, errors.Wrap(err, "Check config")
	}

	return root, false, nil
}

// Validate returns BadValueError if any setting of <r> can not be used
func (r Root) Validate() error {
	if !lo.Contains([]Backend{XSLT, SPARQL}, r.General.Backend) {
		return BadValueError{Field: "general.backend", Value: r.General.Backend, Reason: "Should be xslt or sparql"}
	}
	if r.General.OutputDir == "" {
		return BadValueError{Field: "general.output_dir", Value: `""`, Reason: "Should not be empty"}
	}
	if r.General.MaxWorkers < 1 {
		return BadValueError{Field: "general.max_workers", Value: r.General.MaxWorkers, Reason: "Should be at least 1"}
	}
	if r.XSLT.Processor == "" {
		return BadValueError{Field: "xslt.processor", Value: `""`, Reason: "Should not be empty"}
	}
	if !url.IsAbsolute(r.SPARQL.Endpoint) {
		return BadValueError{Field: "sparql.endpoint", Value: r.SPARQL.Endpoint, Reason: "Should be an absolute URL"}
	}
	if r.SPARQL.RespTimeout <= 0 {
		return BadValueError{Field: "sparql.resp_timeout", Value: r.SPARQL.RespTimeout, Reason: "Should be positive"}
	}
	if err := checkPrefixes("xslt.prefixes", r.XSLT.Prefixes); err != nil {
		return err
	}
	if err := checkPrefixes("sparql.prefixes", r.SPARQL.Prefixes); err != nil {
		return err
	}
	return nil
}

// checkPrefixes returns BadValueError if any of <prefixes> of config <field> lacks name or IRI
func checkPrefixes(field string, prefixes []Prefix) error {
	for idx, p := range prefixes {
		if p.Name == "" || p.IRI == "" {
			return BadValueError{Field: fmt.Sprintf("%v[%v]", field, idx), Value: p, Reason: "Should have both name and iri"}
		}
	}
	return nil
}

// NewDefCfg returns default config as written in "default.yaml" file
func NewDefCfg() Root {
	return Root{
		General: General{
			Backend:    XSLT,
			OutputDir:  "out",
			MaxWorkers: 4,
		},
		XSLT: XSLTCfg{
			Processor: "xsltproc",
			OutputExt: ".xml",
			Prefixes: []Prefix{
				{Name: "db", IRI: "http://www.drugbank.ca"},
			},
		},
		SPARQL: SPARQLCfg{
			Endpoint:     "http://bio2rdf.org/sparql",
			RespTimeout:  time.Second * 30,
			Accept:       "text/turtle",
			OutputExt:    ".ttl",
			InstanceType: "",
			Prefixes: []Prefix{
				{Name: "db", IRI: "http://bio2rdf.org/drugbank_vocabulary:"},
				{Name: "dcterms", IRI: "http://purl.org/dc/terms/"},
				{Name: "bio2rdf", IRI: "http://bio2rdf.org/bio2rdf_vocabulary:"},
				{Name: "rdfs", IRI: "http://www.w3.org/2000/01/rdf-schema#"},
			},
		},
	}
}
