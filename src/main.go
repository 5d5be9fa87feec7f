package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/integrii/flaggy"
	"golang.org/x/sync/errgroup"

	"lifegame/src/universe"
	"lifegame/src/view"
)

type EnvOptions struct {
	interactive bool
	config      string
	template    string
}

func main() {
	eo, uo := initOptions(os.Args[1:])

	canvas, err := view.NewCanvas(uo.Canvas)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	var stateCh chan universe.Status
	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.New(uo, canvas, stateCh)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	if eo.template != "" {
		u.Clear()
		if err = u.SettleTemplate(eo.template); err != nil {
			u.Close()
			log.Fatalf("[main] %v (known templates: %s)", err, strings.Join(u.Templates(), ", "))
		}
	}

	if eo.interactive {
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		v.Start()
		u.Close()
		return
	}

	if err = runBatch(u, stateCh); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

//runBatch runs the simulation until it finishes or the process is interrupted
func runBatch(u *universe.Simulation, stateCh chan universe.Status) error {
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	out := view.NewConsoleOut()
	u.RegisterViewer(out)
	fmt.Printf("\"The Life\" game simulation started...\n")
	out.Start()
	u.Run()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		for {
			select {
			case st := <-stateCh:
				if st.RunningMode == universe.RunningStateFinished {
					return nil
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
	eg.Go(func() error {
		<-ctx.Done()
		u.Stop()
		u.Close()
		if sigCtx.Err() != nil {
			fmt.Printf("\nInterrupted at iteration %v\n", u.Status().IterationNum)
		}
		return nil
	})
	return eg.Wait()
}

//configPath finds the config file argument before the flags are defined,
//the file values become the flag defaults
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case (a == "-c" || a == "--config") && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		case strings.HasPrefix(a, "-c="):
			return strings.TrimPrefix(a, "-c=")
		}
	}
	return ""
}

func initOptions(args []string) (eo *EnvOptions, uo *universe.Options) {
	eo = &EnvOptions{config: configPath(args)}
	o := universe.DefaultOptions()
	if eo.config != "" {
		var err error
		if o, err = universe.LoadOptions(eo.config); err != nil {
			log.Fatalf("[main] %v", err)
		}
	}
	uo = &o

	flaggy.SetName("lifegame")
	flaggy.SetDescription("Conway's Game of Life")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.config, "c", "config", "JSON file with the simulation options, flags override it")
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	flaggy.Float64(&uo.Density, "d", "density", "Share of live cells when settling with random data")
	flaggy.Int64(&uo.Seed, "", "seed", "Random seed, 0 seeds from the clock")
	flaggy.Bool(&uo.StopWhenStable, "", "stopWhenStable", "Finish when the field stops changing or cycles")
	flaggy.String(&uo.Canvas, "t", "canvas", "Canvas to draw on ["+strings.Join(view.CanvasKinds, "|")+"]")
	flaggy.String(&eo.template, "p", "template", "Settle with the template instead of random data")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")

	flaggy.ParseArgs(args)

	if err := uo.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	return
}
