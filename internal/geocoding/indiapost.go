package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type (
	// AreaLookup resolves a pincode to its post office, district and state.
	AreaLookup interface {
		LookupArea(ctx context.Context, code string) (structs.PincodeArea, error)
	}

	ClientParams struct {
		fx.In
		Config config.IConfig
		Logger logger.Logger
	}

	indiaPost struct {
		baseURL string
		client  *http.Client
		logger  logger.Logger
	}

	indiaPostResponse struct {
		Message    string            `json:"Message"`
		Status     string            `json:"Status"`
		PostOffice []indiaPostOffice `json:"PostOffice"`
	}

	indiaPostOffice struct {
		Name     string `json:"Name"`
		District string `json:"District"`
		State    string `json:"State"`
		Region   string `json:"Region"`
	}
)

func NewIndiaPost(p ClientParams) AreaLookup {
	return &indiaPost{
		baseURL: strings.TrimRight(p.Config.GetString("geocoding.india_post_url"), "/"),
		client:  &http.Client{Timeout: p.Config.GetDuration("geocoding.timeout")},
		logger:  p.Logger,
	}
}

func (c *indiaPost) LookupArea(ctx context.Context, code string) (structs.PincodeArea, error) {
	endpoint := fmt.Sprintf("%s/pincode/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return structs.PincodeArea{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return structs.PincodeArea{}, fmt.Errorf("%w: india post: %v", structs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return structs.PincodeArea{}, fmt.Errorf("india post: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn(ctx, "india post returned non-2xx", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return structs.PincodeArea{}, fmt.Errorf("%w: india post returned %d", structs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var parsed []indiaPostResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return structs.PincodeArea{}, fmt.Errorf("%w: india post body: %v", structs.ErrUpstreamUnavailable, err)
	}

	if len(parsed) == 0 || parsed[0].Status != "Success" || len(parsed[0].PostOffice) == 0 {
		return structs.PincodeArea{}, fmt.Errorf("%w: india post has no post office for %s", structs.ErrUnresolvable, code)
	}

	po := parsed[0].PostOffice[0]
	return structs.PincodeArea{
		Area:   orUnknown(po.Name),
		City:   orUnknown(po.District),
		State:  orUnknown(po.State),
		Region: orUnknown(po.Region),
	}, nil
}

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 1 << 20

func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", structs.ErrUpstreamUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body larger than %d bytes", structs.ErrUpstreamUnavailable, maxBodyBytes)
	}
	return body, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return structs.UnknownLabel
	}
	return s
}
