package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lumikey",
	Short: "Score to LED event converter",
	Long:  `Converts MusicXML and MIDI files into timed note events for the piano LED strip.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
