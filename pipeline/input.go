package pipeline

import (
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"schemaorg_pipeline/util/file"
	"schemaorg_pipeline/util/parse"
	"schemaorg_pipeline/util/scan"
	"schemaorg_pipeline/util/url"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/utahta/go-openuri"
)

// Item represents one source record to process
type Item struct {
	// Name identifies the item in logs and report: file path, URL or subject IRI
	Name string

	// Output represents name of the output file, relative to the output directory
	Output string

	// Load returns source record passed to the transformer
	Load func() ([]byte, error)
}

// ReadURI returns content of local file or URL <uri>, fetching URL's with <httpClient>
func ReadURI(httpClient *http.Client, uri string) ([]byte, error) {
	reader, err := openuri.Open(uri, openuri.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrapf(err, "Open %v", uri)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "Read %v", uri)
	}
	return content, nil
}

// ReadList returns non-empty lines of local file or URL <uri>, skipping lines starting with #
func ReadList(httpClient *http.Client, uri string) ([]string, error) {
	content, err := ReadURI(httpClient, uri)
	if err != nil {
		return nil, err
	}

	var list []string
	sc := scan.New([]rune(string(content)), 0)
	for sc.Lines(true) {
		line := strings.TrimSpace(sc.Line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	return list, nil
}

// XMLItems returns items for XML documents found at <input>.
//
// <input> can be an XML file or URL, a directory which is searched for *.xml files recursively, or a .txt list of
// files and URL's. Output names get <outputExt> extension.
func XMLItems(httpClient *http.Client, input string, outputExt string) ([]Item, error) {
	var sources []string

	info, err := os.Stat(input)
	switch {
	case err == nil && info.IsDir():
		if sources, err = file.Walk(input, ".xml"); err != nil {
			return nil, err
		}
	case strings.EqualFold(fileExt(input), ".txt"):
		if sources, err = ReadList(httpClient, input); err != nil {
			return nil, errors.Wrap(err, "Read input list")
		}
	default:
		sources = []string{input}
	}

	items := lo.Map(lo.Uniq(sources), func(source string, _ int) Item {
		return Item{
			Name:   source,
			Output: file.RenameExt(source, outputExt),
			Load:   func() ([]byte, error) { return ReadURI(httpClient, source) },
		}
	})
	if dup := duplicatedOutput(items); dup != "" {
		return nil, errors.Newf("Several inputs would be written to the same output file %v", dup)
	}
	return items, nil
}

// SubjectItems returns items for subject IRI's from <subjects> and the list at <listURI> (if not empty).
//
// Output names are escaped IRI's with <outputExt> extension.
func SubjectItems(httpClient *http.Client, subjects []string, listURI string, outputExt string) ([]Item, error) {
	all := append([]string{}, subjects...)
	if listURI != "" {
		list, err := ReadList(httpClient, listURI)
		if err != nil {
			return nil, errors.Wrap(err, "Read subject list")
		}
		all = append(all, list...)
	}

	for _, subject := range all {
		if err := url.Validate(subject); err != nil {
			return nil, errors.Wrap(err, "Check subject")
		}
	}

	return lo.Map(lo.Uniq(all), func(subject string, _ int) Item {
		return Item{
			Name:   subject,
			Output: url.FileName(subject) + outputExt,
			Load:   func() ([]byte, error) { return []byte(subject), nil },
		}
	}), nil
}

// fileExt returns extension of the last element of local path or URL <input>
func fileExt(input string) string {
	return path.Ext(parse.LastPathItem(strings.ReplaceAll(input, `\`, "/"), "/"))
}

// duplicatedOutput returns first output name shared by several <items> or empty string
func duplicatedOutput(items []Item) string {
	dups := lo.FindDuplicates(lo.Map(items, func(item Item, _ int) string { return item.Output }))
	if len(dups) > 0 {
		return dups[0]
	}
	return ""
}
