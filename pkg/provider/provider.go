package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"f1lapcompare/pkg/model"

	"github.com/pkg/errors"
)

type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, body []byte) error
}

// Client talks to the timing data provider. Successful responses are kept in
// the cache so a session is downloaded only once.
type Client struct {
	apiDomain  string
	httpClient *http.Client
	cache      Cache
}

func NewClient(domain string, cache Cache) *Client {
	return &Client{
		apiDomain:  domain,
		httpClient: http.DefaultClient,
		cache:      cache,
	}
}

func sessionPath(key model.SessionKey) string {
	return fmt.Sprintf("/v1/sessions/%d/%s/%s", key.Year, url.PathEscape(key.Event), url.PathEscape(key.Session))
}

func (c *Client) LoadSession(ctx context.Context, key model.SessionKey) (*model.Session, error) {
	path := sessionPath(key)
	body, cached, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var doc sessionDocument
	err = json.Unmarshal(body, &doc)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding session %s", key)
	}
	s, err := doc.toSession(key)
	if err != nil {
		return nil, errors.Wrapf(err, "session %s", key)
	}
	if !cached {
		c.remember(path, body)
	}
	return s, nil
}

func (c *Client) LapTelemetry(ctx context.Context, key model.SessionKey, driver string, lap int) (model.Trace, error) {
	path := fmt.Sprintf("%s/laps/%s/%d/telemetry", sessionPath(key), url.PathEscape(driver), lap)
	body, cached, err := c.get(ctx, path)
	if err != nil {
		return model.Trace{}, err
	}

	var doc telemetryDocument
	err = json.Unmarshal(body, &doc)
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "decoding telemetry of %s lap %d", driver, lap)
	}
	t, err := doc.toTrace()
	if err != nil {
		return model.Trace{}, errors.Wrapf(err, "telemetry of %s lap %d", driver, lap)
	}
	if !cached {
		c.remember(path, body)
	}
	return t, nil
}

// get returns the body for path and whether it came from the cache.
func (c *Client) get(ctx context.Context, path string) ([]byte, bool, error) {
	if c.cache != nil {
		body, found, err := c.cache.Get(path)
		if err != nil {
			log.Printf("Error reading cache for %s: %s", path, err)
		} else if found {
			return body, true, nil
		}
	}

	// Make a get request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiDomain+path, nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "building provider request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, errors.Wrapf(err, "requesting %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, errors.Errorf("provider answered %s for %s", resp.Status, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}
	return body, false, nil
}

// remember only stores responses that decoded and validated.
func (c *Client) remember(path string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(path, body); err != nil {
		log.Printf("Error caching %s: %s", path, err)
	}
}
