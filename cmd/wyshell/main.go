// Command wyshell is the CLI entrypoint: wires internal/config into an
// internal/registry + internal/engine.Engine, per SPEC_FULL.md §6. Follows
// the teacher's cli/main.go shape (a cobra root command with RunE,
// SilenceErrors, and explicit post-run os.Exit with the real exit code).
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wyshell/wyshell/internal/builtin"
	"github.com/wyshell/wyshell/internal/config"
	"github.com/wyshell/wyshell/internal/engine"
	"github.com/wyshell/wyshell/internal/plan"
	"github.com/wyshell/wyshell/internal/registry"
	"github.com/wyshell/wyshell/internal/shlog"
)

func main() {
	var (
		command    string
		configPath string
		configJSON string
		dumpPlan   string
		fromPlan   string
		debug      bool
		exitCode   int
	)

	rootCmd := &cobra.Command{
		Use:           "wyshell",
		Short:         "A Windows-family interactive command shell execution engine",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, configJSON)
			if err != nil {
				return err
			}

			log := shlog.New(os.Stderr)
			log.Debug = debug

			reg := registry.New()
			builtin.RegisterAll(reg)
			if cfg.BuiltinWatchDir != "" {
				watcher, err := registry.Watch(cfg.BuiltinWatchDir)
				if err != nil {
					log.Warnf("builtin watch disabled: %v", err)
				} else {
					defer watcher.Close()
					go func() {
						for path := range watcher.Changed {
							if _, err := reg.Reload(path); err != nil {
								log.Warnf("reload %s: %v", path, err)
							}
						}
					}()
				}
			}

			eng := engine.New(cfg, reg, engine.Collaborators{
				Parser:        basicParser{},
				PathResolver:  basicPathResolver{},
				AliasExpander: basicAliasExpander{aliases: map[string]string{}},
				EnvExpander:   basicEnvExpander{},
			}, log)

			exitRequested := false
			builtin.RequestExit = func(code int) {
				exitCode = code
				exitRequested = true
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			go func() {
				for range sigCh {
					eng.RequestCancel()
				}
			}()

			switch {
			case fromPlan != "":
				if err := runFromPlan(eng, fromPlan); err != nil {
					return err
				}
			case command != "":
				if err := runOneShot(eng, command, dumpPlan); err != nil {
					log.Errorf("%v", err)
					exitCode = 1
				}
			default:
				runInteractive(eng, log, dumpPlan, &exitRequested)
			}

			return nil
		},
	}

	rootCmd.Flags().StringVarP(&command, "command", "c", "", "Execute a single command line and exit")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.Flags().StringVar(&configJSON, "config-json", "", "Path to a JSON-Schema-validated configuration file")
	rootCmd.Flags().StringVar(&dumpPlan, "dump-plan", "", "Dump each executed plan's CBOR snapshot to this path before running it")
	rootCmd.Flags().StringVar(&fromPlan, "from-plan", "", "Load and run a single CBOR plan snapshot instead of reading input")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func loadConfig(yamlPath, jsonPath string) (config.Config, error) {
	switch {
	case jsonPath != "":
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return config.Config{}, err
		}
		return config.LoadJSON(data)
	case yamlPath != "":
		return config.Load(yamlPath)
	default:
		return config.Default(), nil
	}
}

// runFromPlan replays a previously dumped plan snapshot (--from-plan)
// instead of reading live input, for reproducing a recorded execution.
func runFromPlan(eng *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := plan.Load(data)
	if err != nil {
		return err
	}
	_, err = eng.WalkPlan(p, false)
	return err
}

// runOneShot builds and runs a single command line (`-c`), optionally
// dumping its plan snapshot first (`--dump-plan`).
func runOneShot(eng *engine.Engine, line, dumpPlanPath string) error {
	p, err := eng.BuildPlan(line)
	if err != nil {
		return err
	}
	if dumpPlanPath != "" {
		if err := dumpPlanSnapshot(p, dumpPlanPath); err != nil {
			return err
		}
	}
	_, err = eng.WalkPlan(p, false)
	return err
}

// runInteractive reads one line at a time from stdin, a minimal stand-in
// for the real line editor (out of scope per spec.md §6): good enough to
// drive the engine end to end without a terminal UI library.
func runInteractive(eng *engine.Engine, log *shlog.Logger, dumpPlanPath string, exitRequested *bool) {
	scanner := bufio.NewScanner(os.Stdin)
	for !*exitRequested && scanner.Scan() {
		eng.ResetCancel()
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := runOneShot(eng, line, dumpPlanPath); err != nil {
			log.Errorf("%v", err)
		}
	}
}

func dumpPlanSnapshot(p *plan.Plan, path string) error {
	data, err := plan.Dump(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
