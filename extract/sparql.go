package extract

import (
	"context"
	"io"
	"net/http"
	netUrl "net/url"
	"regexp"

	"schemaorg_pipeline/translate/sparql"
	"schemaorg_pipeline/util/url"

	"github.com/cockroachdb/errors"
)

// subjectRx matches every occurrence of the subject variable, but not longer variables starting with it
var subjectRx = regexp.MustCompile(regexp.QuoteMeta(sparql.SubjectVar) + `\b`)

// BindSubject returns <query> with the subject variable replaced by IRI reference to <subject>
func BindSubject(query string, subject string) (string, error) {
	if err := url.Validate(subject); err != nil {
		return "", errors.Wrap(err, "Bind subject")
	}
	return subjectRx.ReplaceAllLiteralString(query, "<"+subject+">"), nil
}

// SPARQLClient represents SPARQL endpoint client evaluating query templates
type SPARQLClient struct {
	httpClient *http.Client
	endpoint   string
	accept     string
}

// NewSPARQLClient returns new SPARQLClient sending requests to <endpoint> with <httpClient>.
//
// <accept> is the value of the Accept header, it selects the format of the returned graph.
func NewSPARQLClient(httpClient *http.Client, endpoint string, accept string) *SPARQLClient {
	return &SPARQLClient{httpClient: httpClient, endpoint: endpoint, accept: accept}
}

// Evaluate returns response of the endpoint to <query> with the subject variable bound to <subject>.
//
// Can return errors defined in this package: EndpointError.
func (c *SPARQLClient) Evaluate(ctx context.Context, query string, subject string) ([]byte, error) {
	bound, err := BindSubject(query, subject)
	if err != nil {
		return nil, err
	}

	reqURL, err := netUrl.Parse(c.endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "Parse endpoint URL")
	}
	params := reqURL.Query()
	params.Set("query", bound)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "Build endpoint request")
	}
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Send endpoint request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "Read endpoint response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrap(EndpointError{Status: resp.StatusCode, Body: truncate(string(body))}, "Evaluate query")
	}
	return body, nil
}

// Query returns Transformer evaluating <query> for subject IRI given as input
func (c *SPARQLClient) Query(query string) Transformer {
	return boundQuery{client: c, query: query}
}

// boundQuery represents Transformer evaluating query template for subject IRI given as input
type boundQuery struct {
	client *SPARQLClient
	query  string
}

// Transform returns response of the endpoint to the query with subject <input>
func (q boundQuery) Transform(ctx context.Context, input []byte) ([]byte, error) {
	return q.client.Evaluate(ctx, q.query, string(input))
}
