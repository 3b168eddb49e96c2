package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"lightctl/application"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultRequestTimeout = 10 * time.Second

type HTTPGatewayParams struct {
	Endpoints application.EndpointStore

	RequestTimeout time.Duration
	HTTPClient     *http.Client

	Log zerolog.Logger
}

func (p *HTTPGatewayParams) EnsureDefaults() {
	if p.RequestTimeout == 0 {
		p.RequestTimeout = DefaultRequestTimeout
	}
	if p.HTTPClient == nil {
		p.HTTPClient = &http.Client{}
	}
}

// HTTPGateway talks to the control service over plain HTTP. It holds no
// state across calls; the base URL is resolved through the endpoint store
// on every request so a settings change applies to the next call.
type HTTPGateway struct {
	params HTTPGatewayParams

	log zerolog.Logger
}

func NewHTTPGateway(params HTTPGatewayParams) (*HTTPGateway, error) {
	params.EnsureDefaults()

	if params.Endpoints == nil {
		return nil, errors.New("Endpoints is nil")
	}
	return &HTTPGateway{params: params, log: params.Log}, nil
}

func (g *HTTPGateway) Status(ctx context.Context) (application.DeviceStatus, error) {
	var status application.DeviceStatus
	if err := g.do(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return application.DeviceStatus{}, err
	}
	return status, nil
}

func (g *HTTPGateway) TurnOn(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/on", nil, nil)
}

func (g *HTTPGateway) TurnOff(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/off", nil, nil)
}

func (g *HTTPGateway) Toggle(ctx context.Context) (application.PowerState, error) {
	var resp struct {
		Power application.PowerState `json:"power"`
	}
	if err := g.do(ctx, http.MethodPost, "/toggle", nil, &resp); err != nil {
		return "", err
	}
	return resp.Power, nil
}

func (g *HTTPGateway) SetBrightness(ctx context.Context, level int) error {
	body := struct {
		Level int `json:"level"`
	}{Level: level}
	return g.do(ctx, http.MethodPost, "/brightness", body, nil)
}

func (g *HTTPGateway) Health(ctx context.Context) error {
	return g.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do issues a single request with the gateway's wait ceiling. Failures map
// into the RequestError taxonomy: deadline hit is a timeout, any other
// transport error means the service is unreachable, non-2xx carries the
// service's "detail" message when one parses, an undecodable success body
// is malformed.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.params.RequestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return application.NewRequestError(application.KindMalformed, "")
		}
		reader = bytes.NewReader(encoded)
	}

	requestID := uuid.NewString()
	baseURL := g.params.Endpoints.Get()

	g.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", baseURL+path).
		Msg("dispatching request")

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		// A malformed base URL lands here; the store never validates.
		return application.NewRequestError(application.KindUnreachable, err.Error())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.params.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.log.Warn().Str("request_id", requestID).Msg("request timed out")
			return application.NewRequestError(application.KindTimeout, "")
		}
		g.log.Warn().Str("request_id", requestID).Err(err).Msg("request failed")
		return application.NewRequestError(application.KindUnreachable, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return application.NewRequestError(application.KindServiceRejected, rejectionDetail(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return application.NewRequestError(application.KindMalformed, "")
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}

// rejectionDetail pulls the service's diagnostic message out of an error
// body. An empty return makes NewRequestError substitute the generic text.
func rejectionDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}

var _ application.ControlGateway = &HTTPGateway{}
