package reviewpress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// indexNowEndpoint is the shared IndexNow submission API used by Bing and
// other participating search engines.
const indexNowEndpoint = "https://api.indexnow.org/IndexNow"

// IndexNowClient notifies search engines about new or updated URLs via the
// IndexNow protocol. Submissions are retried with backoff; a site that
// configures no key gets a disabled client whose submissions are no-ops.
type IndexNowClient struct {
	host     string
	key      string
	endpoint string
	client   *retryablehttp.Client
}

// NewIndexNowClient builds a client for the site at siteURL with the given
// API key. The key file is expected to be served at https://<host>/<key>.txt.
func NewIndexNowClient(siteURL, key string) *IndexNowClient {
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	return &IndexNowClient{
		host:     host,
		key:      key,
		endpoint: indexNowEndpoint,
		client:   rc,
	}
}

// Enabled reports whether a key is configured.
func (c *IndexNowClient) Enabled() bool {
	return c != nil && c.key != ""
}

type indexNowRequest struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// SubmitURL submits a single URL for indexing.
func (c *IndexNowClient) SubmitURL(u string) error {
	return c.SubmitURLs([]string{u})
}

// SubmitURLs submits a batch of URLs. Invalid URLs are skipped with a
// warning; an all-invalid batch is an error.
func (c *IndexNowClient) SubmitURLs(urls []string) error {
	if !c.Enabled() {
		return nil
	}
	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, err := url.ParseRequestURI(u); err != nil {
			log.Printf("reviewpress: skipping invalid URL for IndexNow: %q", u)
			continue
		}
		valid = append(valid, u)
	}
	if len(valid) == 0 {
		return fmt.Errorf("indexnow: no valid URLs to submit")
	}

	body, err := json.Marshal(indexNowRequest{
		Host:        c.host,
		Key:         c.key,
		KeyLocation: fmt.Sprintf("https://%s/%s.txt", c.host, c.key),
		URLList:     valid,
	})
	if err != nil {
		return fmt.Errorf("indexnow: encode request: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("indexnow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("indexnow: submit: %w", err)
	}
	defer resp.Body.Close()

	// 200 and 202 both mean the submission was accepted.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("indexnow: unexpected status %d", resp.StatusCode)
	}
	return nil
}
