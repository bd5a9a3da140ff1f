package cmd

import (
	"fmt"

	"github.com/lumikey/lumikey/midifile"
	"github.com/lumikey/lumikey/util"
	"github.com/spf13/cobra"
)

var inspectMaxEvents int

func init() {
	inspectCmd.Flags().IntVar(&inspectMaxEvents, "events", 20, "how many events to print")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects a MIDI file's tempo map and events",
	Long:  `Inspects a MIDI file's tempo map and events`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspect(args[0])
	},
}

func inspect(path string) {
	f, err := midifile.Parse(util.ReadFileOrPanic(path))
	if err != nil {
		panic("Could not parse midi file: " + err.Error())
	}

	fmt.Printf("division: %v ticks/quarter\n", f.Division)
	fmt.Printf("tempo map (%v entries):\n", len(f.TempoMap.Entries))
	for _, e := range f.TempoMap.Entries {
		fmt.Printf("  tick %v: %v us/quarter (%.2fms in)\n", e.Tick, e.MicrosPerQuarter, e.CumulativeMs)
	}

	n := util.Min(inspectMaxEvents, len(f.Events))
	fmt.Printf("events (%v of %v):\n", n, len(f.Events))
	for _, e := range f.Events[:n] {
		fmt.Printf("  %.2fms status=0x%02X pitch=%v vel=%v\n", e.TimeMs, e.Status, e.Pitch, e.Vel)
	}
	for _, d := range f.Diagnostics {
		fmt.Printf("warning (%v): %v\n", d.Kind, d.Detail)
	}
}
