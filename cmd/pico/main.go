//go:build tinygo

/*
 * Morse memory game for Raspberry Pi Pico
 *
 * Wiring:
 *   GP15  LED (active high, via resistor)
 *   GP19  push button to 3V3 (internal pull-down)
 *   GP26  floating ADC input used as the noise source
 */
package main

import (
	"context"
	"machine"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/morse/internal/device"
	"github.com/robalobadob/morse/internal/entropy"
	"github.com/robalobadob/morse/internal/game"
)

const (
	PIN_LED    machine.Pin = machine.GP15
	PIN_BUTTON machine.Pin = machine.GP19
)

var PIN_NOISE = machine.ADC{Pin: machine.GP26}

// pinLED drives an active-high LED.
type pinLED struct{ pin machine.Pin }

func (l pinLED) SetActive() error   { l.pin.High(); return nil }
func (l pinLED) SetInactive() error { l.pin.Low(); return nil }

// pinButton reads a button wired to 3V3 with a pull-down.
type pinButton struct{ pin machine.Pin }

func (b pinButton) IsActive() (bool, error) { return b.pin.Get(), nil }

// adcNoise returns the 12 significant bits of a conversion.
type adcNoise struct{ adc machine.ADC }

func (a adcNoise) Sample() uint16 { return a.adc.Get() >> 4 }

func main() {
	logger := zerolog.New(machine.Serial).With().Timestamp().Logger()

	// Set up the hardware or fail
	if err := setup(); err != nil {
		logger.Error().Err(err).Msg("setup")
		failLoop()
	}

	eng, err := game.New(device.Set{
		LED:     pinLED{pin: PIN_LED},
		Button:  pinButton{pin: PIN_BUTTON},
		Timer:   device.NewSystemStopwatch(),
		Delay:   device.SleepWaiter{},
		Entropy: entropy.NewNoise(adcNoise{adc: PIN_NOISE}),
	}, game.WithLogger(logger), game.WithPollInterval(0))
	if err != nil {
		logger.Error().Err(err).Msg("engine")
		failLoop()
	}

	// Only a hardware fault or a full sequence gets us out of here.
	err = game.Run(context.Background(), eng, nil)
	logger.Error().Err(err).Int("level", eng.Level()).Msg("game stopped")
	failLoop()
}

func setup() error {
	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LED.Low()

	PIN_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	machine.InitADC()
	return PIN_NOISE.Configure(machine.ADCConfig{})
}

func failLoop() {
	// Signal hardware failure on the Pico LED
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.Low()
		time.Sleep(time.Millisecond * 100)
		led.High()
		time.Sleep(time.Millisecond * 100)
	}
}
