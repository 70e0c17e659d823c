// Command rotgsetctl exercises a rotgset replica from the command line:
// small scripted demos of add/remove, merge convergence, and garbage
// collection, meant for poking at the library interactively rather
// than for production use.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lindqvist-io/rotgset/idgen"
	"github.com/lindqvist-io/rotgset/replica"
)

func main() {
	var (
		replicaName string
		bucketSize  uint32
		verbose     bool
	)

	root := &cobra.Command{
		Use:           "rotgsetctl",
		Short:         "Exercise a rotgset GSET replica",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&replicaName, "replica", "demo", "replica name; salts generated ids")
	root.PersistentFlags().Uint32Var(&bucketSize, "bucket-size", 8, "ROT tombstone-bucket capacity")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every operation")

	logger := func() zerolog.Logger {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	}

	addCmd := &cobra.Command{
		Use:   "add [elements...]",
		Short: "Add each element to a fresh replica and print its resulting value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := replica.New(replicaName, bucketSize, idgen.NewMonotonic(replicaName), logger())
			if err != nil {
				return err
			}
			for _, a := range args {
				if err := r.Add([]byte(a)); err != nil {
					return err
				}
			}
			printValue(r)
			return nil
		},
	}

	mergeDemoCmd := &cobra.Command{
		Use:   "merge-demo",
		Short: "Build two replicas with divergent history and print their merged value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMergeDemo(bucketSize, logger())
		},
	}

	gcDemoCmd := &cobra.Command{
		Use:   "gc-demo",
		Short: "Fill a replica's tombstone store until a bucket seals, then GC it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGCDemo(bucketSize, logger())
		},
	}

	root.AddCommand(addCmd, mergeDemoCmd, gcDemoCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rotgsetctl:", err)
		os.Exit(1)
	}
}

func printValue(r *replica.Replica) {
	for _, v := range r.Value() {
		fmt.Println(string(v))
	}
}
