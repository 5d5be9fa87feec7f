package universe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeConfig(t, `{"width": 20, "interval": 100000000, "canvas": "persisted", "stop_when_stable": false}`)
	o, err := LoadOptions(path)
	if err != nil {
		t.Fatal(err)
	}
	if o.Width != 20 || o.Interval != 100*time.Millisecond || o.Canvas != "persisted" || o.StopWhenStable {
		t.Fatalf("loaded %+v", o)
	}
	//not in the file, kept from the defaults
	if o.Height != DefHeight || o.Density != DefDensity || o.MaxSteps != DefMaxSteps {
		t.Fatalf("defaults lost: %+v", o)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: got %v", err)
	}
	if _, err := LoadOptions(writeConfig(t, `{"width":`)); err == nil {
		t.Fatal("broken JSON accepted")
	}
	if _, err := LoadOptions(writeConfig(t, `{"density": 1.5}`)); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("invalid density: got %v", err)
	}
	if _, err := LoadOptions(writeConfig(t, `{"canvas": "svg"}`)); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("unknown canvas: got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *Options)
		ok     bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"zero area", func(o *Options) { o.Width = 0 }, true},
		{"negative width", func(o *Options) { o.Width = -1 }, false},
		{"negative interval", func(o *Options) { o.Interval = -time.Second }, false},
		{"negative max steps", func(o *Options) { o.MaxSteps = -1 }, false},
		{"density below zero", func(o *Options) { o.Density = -0.1 }, false},
		{"persisted canvas", func(o *Options) { o.Canvas = CanvasPersisted }, true},
		{"unknown canvas", func(o *Options) { o.Canvas = "svg" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			if err := o.Validate(); (err == nil) != tt.ok {
				t.Fatalf("got %v", err)
			}
		})
	}
}

func TestZeroAreaUniverse(t *testing.T) {
	o := testOptions()
	o.Width = 0
	c := newFakeCanvas(true)
	u := newTestSimulation(t, o, c, nil)
	u.Step()
	barrier(u)
	if st := u.Status(); st.IterationNum != 1 || st.Draws != 0 || st.Changed != 0 {
		t.Fatalf("status %+v", st)
	}
}
