package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/butter-bot-machines/desim/examples/petsim"
	"github.com/butter-bot-machines/desim/pkg/clock"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func renderTerminal(pet *petsim.Pet, res clock.RunResult) {
	fmt.Println(bold("Pet state machine"))
	fmt.Printf("final t=%v  events=%d  samples=%d\n\n", res.T, res.ClockEvents, res.SampleSteps)

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("t", "kind", "state", "message")
	tbl.WithHeaderFormatter(headerFmt)

	for _, ev := range pet.Events {
		kind := cyan(ev.Kind)
		if ev.Kind == "speak" {
			kind = green(ev.Kind)
		}
		tbl.AddRow(fmt.Sprintf("%.2f", float64(ev.T)), kind, ev.State, ev.Message)
	}
	tbl.Print()
}

type jsonReport struct {
	T           float64        `json:"t"`
	ClockEvents int            `json:"clock_events"`
	SampleSteps int            `json:"sample_steps"`
	Events      []petsim.Event `json:"events"`
}

func renderJSON(pet *petsim.Pet, res clock.RunResult) error {
	color.NoColor = true
	report := jsonReport{
		T:           float64(res.T),
		ClockEvents: res.ClockEvents,
		SampleSteps: res.SampleSteps,
		Events:      pet.Events,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
