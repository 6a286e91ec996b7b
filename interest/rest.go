package interest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/streamingfast/derr"
	"go.uber.org/zap"

	haste "github.com/benblamey/HasteStorageClient"
)

const userAgent = "haste_storage_client (0.x)"

// RestModel asks a remote model service for the interestingness of a
// document. The service answers a GET carrying `unix_timestamp`, `location`
// and `metadata` (both JSON encoded) with `{"interestingness": 0.5}`.
type RestModel struct {
	URL     string
	Client  *http.Client
	Retries uint64
	logger  *zap.Logger
}

func NewRestModel(rawURL string, retries uint64, logger *zap.Logger) (*RestModel, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid model url %q: %w", rawURL, err)
	}
	if logger == nil {
		logger = zlog
	}
	return &RestModel{
		URL:     rawURL,
		Client:  http.DefaultClient,
		Retries: retries,
		logger:  logger,
	}, nil
}

type restResponse struct {
	Interestingness *float64 `json:"interestingness"`
}

func (m *RestModel) Interestingness(ctx context.Context, doc *haste.Document) (score float64, err error) {
	reqURL, err := m.requestURL(doc)
	if err != nil {
		return 0, err
	}

	err = derr.RetryContext(ctx, m.Retries, func(ctx context.Context) error {
		s, err := m.fetch(ctx, reqURL)
		if err != nil {
			m.logger.Debug("model request failed", zap.String("url", m.URL), zap.Error(err))
			return err
		}
		score = s
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("querying model %s: %w", m.URL, err)
	}
	return score, nil
}

func (m *RestModel) requestURL(doc *haste.Document) (string, error) {
	location, err := json.Marshal(doc.Location)
	if err != nil {
		return "", fmt.Errorf("encoding location: %w", err)
	}
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}

	values := url.Values{}
	values.Set("unix_timestamp", strconv.FormatFloat(doc.Timestamp, 'f', -1, 64))
	values.Set("location", string(location))
	values.Set("metadata", string(metadata))
	return m.URL + "?" + values.Encode(), nil
}

func (m *RestModel) fetch(ctx context.Context, reqURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var out restResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	if out.Interestingness == nil {
		return 0, fmt.Errorf("response has no interestingness field")
	}
	if err := validScore(*out.Interestingness); err != nil {
		return 0, err
	}
	return *out.Interestingness, nil
}
