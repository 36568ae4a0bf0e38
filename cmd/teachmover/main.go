// Command teachmover drives a Microbot TeachMover arm over a serial link.
//
// Each invocation opens the port, performs one command exchange with the
// arm, and exits. Configuration comes from flags, TEACHMOVER_* environment
// variables, or ~/.teachmover/config.toml, in that order of precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/JBarrett33/go-teachmover/driver"
	"github.com/JBarrett33/go-teachmover/internal/cliconfig"
	"github.com/JBarrett33/go-teachmover/program"
	"github.com/JBarrett33/go-teachmover/serialport"
)

var exampleUsage = `  teachmover --port /dev/ttyUSB0 read
  teachmover --port /dev/ttyUSB0 step 241 0 0 0 0
  teachmover --port /dev/ttyUSB0 dump --out arm-demo.tmv
  teachmover --port /dev/ttyUSB0 load arm-demo.tmv && teachmover --port /dev/ttyUSB0 run`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var dumpOut string

	root := &cobra.Command{
		Use:     "teachmover",
		Short:   "Drive a Microbot TeachMover robotic arm over a serial link",
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags so explicit flags beat file and env values
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			return cfg.Validate()
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.teachmover/config.toml)")
	pf.StringVar(&cfg.Port, "port", cfg.Port, "serial device path, e.g. /dev/ttyUSB0")
	pf.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial baud rate")
	pf.DurationVar(&cfg.ReadTimeout, "timeout", cfg.ReadTimeout, "per-command response timeout")
	pf.DurationVar(&cfg.CommandDelay, "command-delay", cfg.CommandDelay, "pause after each command, for arms that need pacing")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log each command exchange")

	root.AddCommand(
		stepCmd(&cfg),
		closeCmd(&cfg),
		teachCmd(&cfg),
		resetCmd(&cfg),
		readCmd(&cfg),
		dumpCmd(&cfg, &dumpOut),
		loadCmd(&cfg),
		runCmd(&cfg),
	)

	if err := root.Execute(); err != nil {
		log := cliconfig.Logger(false)
		log.Error().Err(err).Msg("teachmover")
		os.Exit(1)
	}
}

// withDriver opens the serial port, builds a driver, runs fn against it,
// and closes the port. SIGINT/SIGTERM cancel the command's context.
func withDriver(cfg *cliconfig.Config, fn func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error) error {
	log := cliconfig.Logger(cfg.Verbose)

	port, err := serialport.Open(cfg.Port, cfg.BaudRate)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()

	drv := driver.New(port,
		driver.WithTimeout(cfg.ReadTimeout),
		driver.WithCommandDelay(cfg.CommandDelay),
		driver.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, drv, log)
}

func stepCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "step BASE SHOULDER ELBOW WRIST-R WRIST-L",
		Short: "Move all five motors by signed half-step deltas",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			deltas := make([]int, len(args))
			for i, a := range args {
				n, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("delta %d: %q is not an integer", i+1, a)
				}
				deltas[i] = n
			}
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.Step(ctx, deltas); err != nil {
					return err
				}
				log.Info().Ints("deltas", deltas).Msg("step complete")
				return nil
			})
		},
	}
}

func closeCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the gripper until the grip switch trips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.CloseGripper(ctx); err != nil {
					return err
				}
				log.Info().Msg("gripper closed")
				return nil
			})
		},
	}
}

func teachCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "teach",
		Short: "Hand control to the arm's teach pendant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.EnableTeachMode(ctx); err != nil {
					return err
				}
				log.Info().Msg("teach mode enabled, use the pendant to record a program")
				return nil
			})
		},
	}
}

func resetCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero the arm's position registers at the current pose",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.Reset(ctx); err != nil {
					return err
				}
				log.Info().Msg("position registers zeroed")
				return nil
			})
		},
	}
}

func readCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Read the five position registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				regs, err := drv.ReadRegisters(ctx)
				if err != nil {
					return err
				}
				for i, v := range regs {
					fmt.Printf("%-12s %6d\n", driver.Axis(i).String(), v)
				}
				return nil
			})
		},
	}
}

func dumpCmd(cfg *cliconfig.Config, out *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Download the arm's taught program to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *out == "" {
				return fmt.Errorf("--out is required")
			}
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				prog, err := drv.DumpProgram(ctx)
				if err != nil {
					return err
				}
				if err := program.Save(*out, prog); err != nil {
					return err
				}
				log.Info().Str("file", *out).Int("bytes", len(prog)).Msg("program saved")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(out, "out", "", "destination file for the program image")
	return cmd
}

func loadCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE",
		Short: "Upload a program image file to the arm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := program.Load(args[0])
			if err != nil {
				return err
			}
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.WriteProgram(ctx, prog); err != nil {
					return err
				}
				log.Info().Str("file", args[0]).Int("bytes", len(prog)).Msg("program uploaded")
				return nil
			})
		},
	}
}

func runCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the arm's stored program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(cfg, func(ctx context.Context, drv *driver.Driver, log zerolog.Logger) error {
				if err := drv.RunProgram(ctx); err != nil {
					return err
				}
				log.Info().Msg("program started")
				return nil
			})
		},
	}
}
