package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/msdscript/msdscript/pkg/difftest"
	"github.com/msdscript/msdscript/pkg/ioctx"
)

func difftestCmd(cfg *Config) *cobra.Command {
	var (
		iterations int
		timeout    time.Duration
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "difftest BINARY [BINARY2]",
		Short: "Test msdscript implementations on random expressions",
		Long: `With one binary, checks that its --print and --pretty-print output
evaluates to the same value as the input under --interp, and that
pretty-printing is idempotent.

With two binaries, checks that both produce the same output in every mode.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project := cfg.Project.DiffTest

			if !cmd.Flags().Changed("iterations") {
				iterations = project.Iterations
			}
			if !cmd.Flags().Changed("timeout") {
				d, err := project.TimeoutDuration()
				if err != nil {
					return err
				}
				timeout = d
			}
			if !cmd.Flags().Changed("seed") {
				seed = project.Seed
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			runner := &difftest.Runner{
				Binaries:   args,
				Iterations: iterations,
				Timeout:    timeout,
				Rand:       rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
			}
			if err := runner.Run(ctx); err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			_, err := fmt.Fprintf(ioctx.StdoutFromContext(ctx), "All %d tests passed (seed %d).\n", iterations, seed)
			return err
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", difftest.DefaultIterations, "Number of expressions to try")
	cmd.Flags().DurationVar(&timeout, "timeout", difftest.DefaultTimeout, "Time limit for each run")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the expression generator (0 picks one)")

	return cmd
}
