package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "vase",
		Short: "vase is a tool for symbolic execution of Go code",
		Long: `vase is a tool for symbolic execution of Go code.

It can optionally wrap its underlying solver with a value-assisted
rewrite layer that injects equality constraints derived from previously
observed concrete values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("verbose", false, "enable verbose logging")
	root.AddCommand(newGenerateCommand())
	return root
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
