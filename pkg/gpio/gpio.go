// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package gpio

import (
	"errors"
	"fmt"
	"path/filepath"
	"syscall"

	"github.com/warthog618/go-gpiocdev"
)

func toReqOptions(lc LineConfig) []gpiocdev.LineReqOption {
	opts := make([]gpiocdev.LineReqOption, 0, 6)

	if lc.Consumer != "" {
		opts = append(opts, gpiocdev.WithConsumer(lc.Consumer))
	}

	switch lc.Direction {
	case DirectionInput:
		opts = append(opts, gpiocdev.AsInput)
		switch lc.Edge {
		case EdgeRising:
			opts = append(opts, gpiocdev.WithRisingEdge)
		case EdgeFalling:
			opts = append(opts, gpiocdev.WithFallingEdge)
		case EdgeBoth:
			opts = append(opts, gpiocdev.WithBothEdges)
		}
		if lc.DebouncePeriod > 0 {
			opts = append(opts, gpiocdev.WithDebounce(lc.DebouncePeriod))
		}
	case DirectionOutput:
		opts = append(opts, gpiocdev.AsOutput(lc.InitialValue))
		switch lc.Drive {
		case DriveOpenDrain:
			opts = append(opts, gpiocdev.AsOpenDrain)
		case DriveOpenSource:
			opts = append(opts, gpiocdev.AsOpenSource)
		default:
			opts = append(opts, gpiocdev.AsPushPull)
		}
	}

	switch lc.Bias {
	case BiasPullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case BiasPullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	case BiasDisabled:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	}

	if lc.ActiveState == ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	return opts
}

// RequestLine requests a single named GPIO line using the line's merged
// configuration from cfg.
func RequestLine(cfg *Config, name string) (*gpiocdev.Line, error) {
	if cfg.ChipPath == "" {
		return nil, fmt.Errorf("%w: chip path cannot be empty", ErrInvalidChipPath)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: line name cannot be empty", ErrInvalidConfiguration)
	}

	foundChip, offset, err := gpiocdev.FindLine(name)
	if err != nil {
		return nil, mapGpiocdevError(err, fmt.Sprintf("finding line %q", name))
	}
	if filepath.Base(foundChip) != filepath.Base(cfg.ChipPath) {
		return nil, fmt.Errorf("%w: line %q not found on chip %q", ErrLineNotFound, name, cfg.ChipPath)
	}

	lc := cfg.GetLineConfig(name)
	line, err := gpiocdev.RequestLine(cfg.ChipPath, offset, toReqOptions(lc)...)
	if err != nil {
		return nil, mapGpiocdevError(err, fmt.Sprintf("requesting line %q from %q", name, cfg.ChipPath))
	}
	return line, nil
}

// GetGPIO reads the current value of a named input line and closes it
// immediately afterward.
func GetGPIO(cfg *Config, name string) (int, error) {
	line, err := RequestLine(cfg, name)
	if err != nil {
		return 0, err
	}
	defer line.Close()

	value, err := line.Value()
	if err != nil {
		return 0, fmt.Errorf("%w: reading %q: %w", ErrOperationFailed, name, err)
	}
	return value, nil
}

// Adapters opens the button and charger-present lines on chip and returns
// two read closures suitable for the supervisor's ButtonRead and
// ChargerConnected host adapters, plus a close function that releases both
// lines. Both lines are requested as inputs with no hardware debounce
// period; set activeLow when a line reads logical-high at rest.
func Adapters(chip, buttonLine string, buttonActiveLow bool, chargerLine string, chargerActiveLow bool) (buttonRead func() bool, chargerConnected func() bool, closeFn func() error, err error) {
	buttonState := ActiveHigh
	if buttonActiveLow {
		buttonState = ActiveLow
	}
	chargerState := ActiveHigh
	if chargerActiveLow {
		chargerState = ActiveLow
	}

	cfg := NewConfig(
		WithChip(chip),
		WithDirection(DirectionInput),
		WithLines(map[string]LineConfig{
			buttonLine:  {Direction: DirectionInput, ActiveState: buttonState, Consumer: "powersupd-button"},
			chargerLine: {Direction: DirectionInput, ActiveState: chargerState, Consumer: "powersupd-charger"},
		}),
	)
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	button, err := RequestLine(cfg, buttonLine)
	if err != nil {
		return nil, nil, nil, err
	}

	charger, err := RequestLine(cfg, chargerLine)
	if err != nil {
		button.Close()
		return nil, nil, nil, err
	}

	buttonRead = func() bool {
		v, err := button.Value()
		return err == nil && v != 0
	}
	chargerConnected = func() bool {
		v, err := charger.Value()
		return err == nil && v != 0
	}
	closeFn = func() error {
		return errors.Join(button.Close(), charger.Close())
	}

	return buttonRead, chargerConnected, closeFn, nil
}

func mapGpiocdevError(err error, details string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, syscall.ENOENT):
		return fmt.Errorf("%w: %s", ErrChipNotFound, details)
	case errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, details)
	case errors.Is(err, gpiocdev.ErrClosed):
		return fmt.Errorf("%w: %s", ErrLineClosed, details)
	default:
		return fmt.Errorf("%w: %s: %w", ErrOperationFailed, details, err)
	}
}
