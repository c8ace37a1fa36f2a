package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"schemaorg_pipeline/util/logger"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/zenizh/go-capturer"
)

// writeCfg writes <content> to a new config file and returns it's path
func writeCfg(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "schemaorg_pipeline.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644), "should write config")
	return path
}

func TestInit(t *testing.T) {
	log := logger.New(logrus.DebugLevel)

	path := filepath.Join(t.TempDir(), "schemaorg_pipeline_test.yaml")

	// Test creation of the default config
	actual, isNewCfg, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, Root{}, actual, "should return empty config")
	assert.True(t, isNewCfg, "should return true")
	assert.FileExists(t, path, "should write default config")

	// Test reading of the default config
	actual, isNewCfg, err = Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, NewDefCfg(), actual, "should return default config")
	assert.False(t, isNewCfg, "should return false")
}

func TestInitPartial(t *testing.T) {
	path := writeCfg(t, `general:
  backend: SPARQL
  max_workers: 8
sparql:
  resp_timeout: 5s
  instance_type: db:Drug
  prefixes:
    - name: ct
      iri: 'http://clinicaltrials.gov/schema/'
`)

	var actual Root
	var err error
	out := capturer.CaptureStderr(func() {
		log := logger.New(logrus.DebugLevel)
		actual, _, err = Init(log, path)
	})
	assert.NoError(t, err, "should not return error")
	assert.Contains(t, out, "Config is missing fields, using defaults", "should warn about missing fields")
	assert.Contains(t, out, "general.output_dir", "should name missing fields")

	expected := NewDefCfg()
	expected.General.Backend = SPARQL
	expected.General.MaxWorkers = 8
	expected.SPARQL.RespTimeout = time.Second * 5
	expected.SPARQL.InstanceType = "db:Drug"
	expected.SPARQL.Prefixes = []Prefix{{Name: "ct", IRI: "http://clinicaltrials.gov/schema/"}}
	assert.Exactly(t, expected, actual, "should merge config with defaults")
}

func TestInitErrors(t *testing.T) {
	log := logger.New(logrus.DebugLevel)

	_, _, err := Init(log, writeCfg(t, "general:\n  unknown_field: 1\n"))
	assert.Error(t, err, "should return error for unknown field")

	_, _, err = Init(log, writeCfg(t, "sparql:\n  resp_timeout: soon\n"))
	assert.Error(t, err, "should return error for bad duration")

	_, _, err = Init(log, writeCfg(t, "general: [\n"))
	assert.Error(t, err, "should return error for malformed YAML")

	cases := map[string]string{
		"general:\n  backend: xquery\n":                "general.backend",
		"general:\n  max_workers: 0\n":                 "general.max_workers",
		"general:\n  output_dir: ''\n":                 "general.output_dir",
		"xslt:\n  processor: ''\n":                     "xslt.processor",
		"sparql:\n  endpoint: bio2rdf\n":               "sparql.endpoint",
		"sparql:\n  resp_timeout: 0s\n":                "sparql.resp_timeout",
		"sparql:\n  prefixes:\n    - name: db\n":       "sparql.prefixes[0]",
		"xslt:\n  prefixes:\n    - iri: 'http://x/'\n": "xslt.prefixes[0]",
	}
	for content, field := range cases {
		_, isNewCfg, err := Init(log, writeCfg(t, content))
		var badValueErr BadValueError
		if assert.True(t, errors.As(err, &badValueErr), "should return BadValueError for %q", content) {
			assert.Exactly(t, field, badValueErr.Field, "should name invalid field")
		}
		assert.False(t, isNewCfg, "should return false")
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewDefCfg().Validate(), "default config should be valid")
}

func TestNewDefCfgPrefixes(t *testing.T) {
	names := func(prefixes []Prefix) []string {
		return lo.Map(prefixes, func(p Prefix, _ int) string { return p.Name })
	}
	c := NewDefCfg()
	assert.Subset(t, names(c.SPARQL.Prefixes), []string{"db", "dcterms", "bio2rdf", "rdfs"},
		"should declare prefixes of the DrugBank RDF mapping")
	assert.Exactly(t, []string{"db"}, names(c.XSLT.Prefixes), "should declare DrugBank XML namespace")
}
