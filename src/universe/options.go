package universe

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

//default options
const (
	DefSimulationInterval = time.Millisecond * 50
	DefMaxSteps           = 1000
	DefWidth              = 50
	DefHeight             = 50
	DefMaxSkippedTicks    = 5
	DefDensity            = 0.5
	DefCanvas             = CanvasPixel
)

//canvas names
const (
	CanvasPixel     = "pixel"
	CanvasPersisted = "persisted"
)

//CanvasKinds lists the canvas names the options accept
var CanvasKinds = []string{CanvasPixel, CanvasPersisted}

var ErrInvalidOptions = errors.New("invalid options")

//Options represents the Universe's configurable options
type Options struct {
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	Interval        time.Duration `json:"interval"`
	MaxSteps        int           `json:"max_steps"` //0 means unlimited
	MaxSkippedTicks int           `json:"max_skipped_ticks"`
	Density         float64       `json:"density"` //share of live cells on random settle
	Seed            int64         `json:"seed"`    //0 seeds from the clock
	StopWhenStable  bool          `json:"stop_when_stable"`
	Canvas          string        `json:"canvas"` //one of CanvasKinds, follows UseCanvas
}

func DefaultOptions() Options {
	return Options{
		Width:           DefWidth,
		Height:          DefHeight,
		Interval:        DefSimulationInterval,
		MaxSteps:        DefMaxSteps,
		MaxSkippedTicks: DefMaxSkippedTicks,
		Density:         DefDensity,
		StopWhenStable:  true,
		Canvas:          DefCanvas,
	}
}

//LoadOptions loads the options from a JSON file on top of the defaults
func LoadOptions(filename string) (Options, error) {
	o := DefaultOptions()

	data, err := os.ReadFile(filename)
	if err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &o); err != nil {
		return o, errors.Wrapf(err, "[LoadOptions] failed to unmarshal data from file: %+v", filename)
	}

	return o, o.Validate()
}

//Validate checks the options for values the universe can't run with
func (o Options) Validate() error {
	switch {
	case o.Width < 0 || o.Height < 0:
		return errors.Wrapf(ErrInvalidOptions, "negative dimension %vx%v", o.Width, o.Height)
	case o.Interval < 0:
		return errors.Wrapf(ErrInvalidOptions, "negative interval %v", o.Interval)
	case o.MaxSteps < 0:
		return errors.Wrapf(ErrInvalidOptions, "negative max steps %v", o.MaxSteps)
	case o.Density < 0 || o.Density > 1:
		return errors.Wrapf(ErrInvalidOptions, "density %v is outside [0,1]", o.Density)
	case !knownCanvas(o.Canvas):
		return errors.Wrapf(ErrInvalidOptions, "unknown canvas %q", o.Canvas)
	}
	return nil
}

func knownCanvas(kind string) bool {
	for _, k := range CanvasKinds {
		if k == kind {
			return true
		}
	}
	return false
}
