package application

import "fmt"

// DefaultEndpoint is the base URL used until the user stores another one.
const DefaultEndpoint = "http://127.0.0.1:8000"

// EndpointStore hands out the control service base URL. Set persists
// immediately and overwrites any previous value; the store performs no URL
// validation, malformed values surface later as request failures.
type EndpointStore interface {
	Get() string
	Set(url string) error
}

// StaticEndpointStore pins a fixed base URL, the moral equivalent of the
// web client's build-time constant. Set is rejected.
type StaticEndpointStore struct {
	URL string
}

func (s StaticEndpointStore) Get() string {
	if s.URL == "" {
		return DefaultEndpoint
	}
	return s.URL
}

func (s StaticEndpointStore) Set(string) error {
	return fmt.Errorf("endpoint is fixed for this session")
}

var _ EndpointStore = StaticEndpointStore{}
