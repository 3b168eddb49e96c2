package application

import "context"

// ControlGateway issues requests against the light control service. Every
// failure is a *RequestError; implementations resolve the base URL through
// an EndpointStore before each call so a settings change takes effect on
// the next request.
type ControlGateway interface {
	Status(ctx context.Context) (DeviceStatus, error)
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Toggle(ctx context.Context) (PowerState, error)
	SetBrightness(ctx context.Context, level int) error
	Health(ctx context.Context) error
}
