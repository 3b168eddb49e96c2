package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrDispatchPending is returned when a command arrives while another one
// is still in flight. Brightness previews are never gated by it.
var ErrDispatchPending = fmt.Errorf("another command is in flight")

type CommandDispatcherParams struct {
	Gateway ControlGateway
	Cache   *StatusCache

	Log zerolog.Logger
}

// CommandDispatcher issues state-mutating commands. Power changes are
// committed only with the server-confirmed value; brightness changes are
// applied to the display optimistically and rolled back to the last
// confirmed level when the command fails.
type CommandDispatcher struct {
	params CommandDispatcherParams

	log zerolog.Logger
}

func NewCommandDispatcher(params CommandDispatcherParams) (*CommandDispatcher, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("Gateway is nil")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("Cache is nil")
	}
	return &CommandDispatcher{params: params, log: params.Log}, nil
}

// TogglePower flips the bulb and commits whatever power state the server
// reports back, even if it matches the pre-toggle value.
func (d *CommandDispatcher) TogglePower(ctx context.Context) (PowerState, error) {
	if !d.params.Cache.TryBusy() {
		return "", ErrDispatchPending
	}
	defer d.params.Cache.ClearBusy()

	seq := d.params.Cache.Next()

	power, err := d.params.Gateway.Toggle(ctx)
	if err != nil {
		d.log.Warn().Uint64("seq", seq).Err(err).Msg("toggle failed")
		d.params.Cache.Fail(seq, err.Error())
		return "", err
	}

	d.params.Cache.CommitPower(seq, power)
	d.log.Info().Uint64("seq", seq).Str("power", string(power)).Msg("toggle confirmed")
	return power, nil
}

// TurnOn issues an explicit power-on command.
func (d *CommandDispatcher) TurnOn(ctx context.Context) error {
	return d.setPower(ctx, PowerOn)
}

// TurnOff issues an explicit power-off command.
func (d *CommandDispatcher) TurnOff(ctx context.Context) error {
	return d.setPower(ctx, PowerOff)
}

func (d *CommandDispatcher) setPower(ctx context.Context, power PowerState) error {
	if !d.params.Cache.TryBusy() {
		return ErrDispatchPending
	}
	defer d.params.Cache.ClearBusy()

	seq := d.params.Cache.Next()

	var err error
	if power == PowerOn {
		err = d.params.Gateway.TurnOn(ctx)
	} else {
		err = d.params.Gateway.TurnOff(ctx)
	}
	if err != nil {
		d.log.Warn().Uint64("seq", seq).Str("power", string(power)).Err(err).Msg("power command failed")
		d.params.Cache.Fail(seq, err.Error())
		return err
	}

	d.params.Cache.CommitPower(seq, power)
	return nil
}

// PreviewBrightness updates only the locally displayed value. This is what
// an in-progress slider drag calls; no network traffic is generated until
// the user settles and SetBrightness runs.
func (d *CommandDispatcher) PreviewBrightness(level int) error {
	if level < 1 || level > 100 {
		return fmt.Errorf("brightness must be between 1 and 100")
	}
	d.params.Cache.PreviewBrightness(level)
	return nil
}

// SetBrightness applies level to the display immediately, then dispatches
// the command. On failure the displayed value reverts to the last
// server-confirmed brightness instead of dangling at the optimistic one.
func (d *CommandDispatcher) SetBrightness(ctx context.Context, level int) error {
	if level < 1 || level > 100 {
		return fmt.Errorf("brightness must be between 1 and 100")
	}

	if !d.params.Cache.TryBusy() {
		return ErrDispatchPending
	}
	defer d.params.Cache.ClearBusy()

	d.params.Cache.PreviewBrightness(level)
	seq := d.params.Cache.Next()

	if err := d.params.Gateway.SetBrightness(ctx, level); err != nil {
		d.log.Warn().Uint64("seq", seq).Int("level", level).Err(err).Msg("brightness command failed")
		d.params.Cache.Fail(seq, err.Error())
		d.params.Cache.RevertBrightness()
		return err
	}

	d.params.Cache.CommitBrightness(seq, level)
	return nil
}
