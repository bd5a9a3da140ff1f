package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lumikey/lumikey/convert"
	"github.com/lumikey/lumikey/model"
	"github.com/lumikey/lumikey/smfout"
	"github.com/lumikey/lumikey/util"
	"github.com/spf13/cobra"
)

var convertOutDir string
var convertMaxNum int
var convertMidiOut bool

func init() {
	convertCmd.Flags().StringVarP(&convertOutDir, "out", "o", "", "directory for result JSON (default stdout)")
	convertCmd.Flags().IntVar(&convertMaxNum, "max", 0, "max files to convert when given a directory")
	convertCmd.Flags().BoolVar(&convertMidiOut, "midi", false, "also write the merged events as a .mid next to the JSON")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <file-or-dir>",
	Short: "Converts score/MIDI files to event JSON",
	Long:  `Converts score/MIDI files to event JSON`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runConvert(args[0])
	},
}

func runConvert(path string) {
	info, err := os.Stat(path)
	if err != nil {
		panic("Could not stat input: " + err.Error())
	}

	paths := []string{path}
	if info.IsDir() {
		paths = util.GatherAllScorePaths(path, convertMaxNum)
	}

	for i, p := range paths {
		fmt.Printf("Converting %v of %v: %v\n", i+1, len(paths), p)
		res, err := convert.File(p)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", p, err)
			continue
		}
		for _, d := range res.Diagnostics {
			fmt.Printf("  warning (%v): %v\n", d.Kind, d.Detail)
		}

		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			panic("Could not marshal result: " + err.Error())
		}
		if convertOutDir == "" {
			fmt.Println(string(data))
			continue
		}
		out := filepath.Join(convertOutDir, filepath.Base(p)+".json")
		if err := os.WriteFile(out, data, 0644); err != nil {
			fmt.Printf("Write failed for file %v: %v\n", out, err)
		}

		if convertMidiOut {
			writeMidi(filepath.Join(convertOutDir, filepath.Base(p)+".mid"), res.Events)
		}
	}
}

func writeMidi(path string, events []model.MidiEvent) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Couldn't open file %v: %v\n", path, err)
		return
	}
	defer f.Close()
	if err := smfout.Write(f, events); err != nil {
		fmt.Printf("Write failed for file %v: %v\n", path, err)
	}
}
