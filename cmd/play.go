package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/lumikey/lumikey/constants"
	"github.com/lumikey/lumikey/convert"
	"github.com/lumikey/lumikey/device"
	"github.com/lumikey/lumikey/playback"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var playRate float64
var playSerial string
var playLedCount int

func init() {
	playCmd.Flags().Float64Var(&playRate, "rate", 1, "playback rate")
	playCmd.Flags().StringVar(&playSerial, "serial", "", "serial device for LED output (e.g. /dev/ttyUSB0)")
	playCmd.Flags().IntVar(&playLedCount, "leds", 176, "LEDs on the strip")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Plays a converted file to a MIDI out port and/or LED strip",
	Long:  `Plays a converted file to a MIDI out port and/or LED strip`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		play(args[0])
	},
}

func play(path string) {
	defer midi.CloseDriver()

	res, err := convert.File(path)
	if err != nil {
		fmt.Printf("Could not convert %v because: %v\n", path, err)
		return
	}
	fmt.Printf("Playing %v events over %.1fs\n", len(res.Events), res.TotalDurationMs/1000)

	out, err := midi.OutPort(0)
	if err != nil {
		fmt.Println("can't find a MIDI out port")
		return
	}
	send, err := midi.SendTo(out)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	var leds *device.Streamer
	if playSerial != "" {
		f, err := os.OpenFile(playSerial, os.O_WRONLY, 0)
		if err != nil {
			fmt.Printf("Could not open serial device because: %v\n", err)
			return
		}
		defer f.Close()
		leds = device.NewStreamer(f)
		leds.Reset()
		defer func() {
			leds.Reset()
			leds.Flush()
		}()
	}

	session := playback.NewSession(res.Events)
	session.Rate = playRate

	start := time.Now()
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		nowMs := float64(time.Since(start).Microseconds()) / 1000
		for _, evt := range session.Due(nowMs) {
			if evt.IsNoteOn() {
				send(midi.NoteOn(0, evt.Pitch, constants.NoteOnVelocity))
			} else if evt.IsNoteOff() {
				send(midi.NoteOff(0, evt.Pitch))
			}
			if leds != nil {
				if led, ok := device.NoteLED(evt.Pitch, playLedCount); ok {
					if evt.IsNoteOn() {
						leds.Set(led, 0, 128, 255, 100)
					} else {
						leds.Off(led)
					}
				}
			}
		}
		if session.Done() {
			break
		}
	}
}
