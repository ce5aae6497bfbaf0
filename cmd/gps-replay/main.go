// Package main provides the CLI entrypoint for gps-replay.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/north-road/gps-replay/gps"
)

// Version information - populated at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	flagChunkSize       int
	flagRequireChecksum bool
	flagVerbose         bool

	playSerialPort string
	playBaudRate   int
	playRate       time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gps-replay",
		Short:         "Replay recorded NMEA logs with scrubbable playback position",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().IntVar(&flagChunkSize, "chunk-size", 0, "Bytes per file read (default from GPS_REPLAY_CHUNK_SIZE or 16384)")
	rootCmd.PersistentFlags().BoolVar(&flagRequireChecksum, "require-checksum", false, "Drop sentences without a checksum suffix")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newPlayCmd())
	return rootCmd
}

// buildConfig resolves environment defaults and flag overrides
func buildConfig() (gps.Config, error) {
	cfg, err := gps.ConfigFromEnv()
	if err != nil {
		return gps.Config{}, err
	}
	if flagChunkSize > 0 {
		cfg.ChunkSize = flagChunkSize
	}
	if flagRequireChecksum {
		cfg.RequireChecksum = true
	}

	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	cfg.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	return cfg, cfg.Validate()
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <log>",
		Short: "Show the time extent and load statistics of an NMEA log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			loader, err := gps.NewLoader(cfg)
			if err != nil {
				return err
			}

			fixes, stats, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			start := fixes[0].Timestamp
			end := fixes[len(fixes)-1].Timestamp
			fmt.Printf("Log:               %s\n", args[0])
			fmt.Printf("Start:             %s\n", start.Format(time.RFC3339))
			fmt.Printf("End:               %s\n", end.Format(time.RFC3339))
			fmt.Printf("Duration:          %s\n", end.Sub(start))
			fmt.Printf("Fixes:             %d\n", stats.Fixes)
			fmt.Printf("Lines read:        %d\n", stats.LinesRead)
			fmt.Printf("Checksum failures: %d\n", stats.ChecksumFailures)
			fmt.Printf("Unknown sentences: %d\n", stats.UnknownSentences)
			fmt.Printf("Dropped timeless:  %d\n", stats.DroppedTimeless)
			fmt.Printf("Field conflicts:   %d\n", stats.FieldConflicts)
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <log>",
		Short: "Print every consolidated fix in the log in time order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig()
			if err != nil {
				return err
			}
			loader, err := gps.NewLoader(cfg)
			if err != nil {
				return err
			}

			fixes, _, err := loader.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, fix := range fixes {
				fmt.Println(formatFix(fix))
			}
			return nil
		},
	}
}

// formatFix renders one fix as a single line, with absent fields dashed
func formatFix(fix gps.Fix) string {
	num := func(present bool, format string, v float64) string {
		if !present {
			return "-"
		}
		return fmt.Sprintf(format, v)
	}
	count := func(present bool, v int) string {
		if !present {
			return "-"
		}
		return fmt.Sprintf("%d", v)
	}

	f := fix.Fields
	return fmt.Sprintf("%s  lat=%s lon=%s alt=%s speed=%s course=%s sats=%s quality=%s",
		fix.Timestamp.Format(time.RFC3339),
		num(f.HasLatitude, "%.6f", f.Latitude),
		num(f.HasLongitude, "%.6f", f.Longitude),
		num(f.HasAltitude, "%.1f", f.Altitude),
		num(f.HasSpeed, "%.1f", f.Speed),
		num(f.HasCourse, "%.1f", f.Course),
		count(f.HasSatellites, f.Satellites),
		count(f.HasQuality, f.Quality))
}

// openSerialPort opens a serial port for forwarding replayed sentences
func openSerialPort(port string, baudRate int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(port, mode)
}
