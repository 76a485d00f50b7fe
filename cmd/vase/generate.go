package main

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/vaselabs/vase"
	"github.com/vaselabs/vase/go/ast/astutil"
	"github.com/vaselabs/vase/z3"
)

var SymbolicTestPrefix = "SymbolicTest"

var generateOptions = vase.DefaultOptions()

var generateCommand = &cobra.Command{
	Use:   "generate [package]",
	Short: "generate test cases by symbolically executing SymbolicTest* functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		return runGenerate(cmd.Context(), args[0], newLogger(verbose))
	},
}

func newGenerateCommand() *cobra.Command {
	flags := generateCommand.Flags()
	flags.StringVar(&generateOptions.MapPath, "vase-map", generateOptions.MapPath, "JSON file containing observed values to assist the solver")
	flags.IntVar(&generateOptions.MaxArrays, "vase-max-arrays", generateOptions.MaxArrays, "max arrays considered per rewrite")
	flags.IntVar(&generateOptions.MaxBytesPerArray, "vase-max-bytes", generateOptions.MaxBytesPerArray, "max little-endian bytes per array when building equalities")
	flags.IntVar(&generateOptions.MaxValuesPerSite, "vase-max-values", generateOptions.MaxValuesPerSite, "max distinct observed values tried per site")
	flags.BoolVar(&generateOptions.TryPairSum, "vase-try-pairs", generateOptions.TryPairSum, "enable family-3 pair-sum candidates")
	flags.BoolVar(&generateOptions.Verbose, "vase-verbose", generateOptions.Verbose, "emit VASE acceptance diagnostics")
	flags.StringVar(&generateOptions.CachePath, "vase-cache", generateOptions.CachePath, "bbolt database used to cache the parsed VASE map across runs")
	flags.Bool("use-vase-solver", false, "wrap the underlying solver with the VASE rewrite layer")
	return generateCommand
}

func runGenerate(ctx context.Context, pkgPattern string, log *logrus.Logger) error {
	useVase, _ := generateCommand.Flags().GetBool("use-vase-solver")

	// Load the initial set of packages.
	initial, err := packages.Load(&packages.Config{
		Mode:  packages.LoadAllSyntax,
		Tests: true,
	}, pkgPattern)
	if err != nil {
		return err
	} else if packages.PrintErrors(initial) > 0 {
		return fmt.Errorf("packages contain errors")
	}

	// Build program in SSA form.
	prog, pkgs := ssautil.AllPackages(initial, ssa.BuilderMode(0))
	for i, pkg := range pkgs {
		if pkg == nil {
			return fmt.Errorf("cannot build SSA for package %s", initial[i])
		}
		pkg.SetDebugMode(true)
	}
	prog.Build()

	// Ensure program depends on runtime package.
	if prog.ImportedPackage("runtime") == nil {
		return fmt.Errorf("program does not depend on runtime")
	}

	// Find matching vase test cases.
	var fns []*ssa.Function
	for _, pkg := range pkgs {
		for _, m := range pkg.Members {
			if m, ok := m.(*ssa.Function); ok && strings.HasPrefix(m.Name(), SymbolicTestPrefix) {
				fns = append(fns, m)
			}
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name() < fns[j].Name() })

	// Execute functions using the symbolic execution engine.
	for _, fn := range fns {
		if err := generateFunction(ctx, fn, log, useVase); err != nil {
			return err
		}
	}
	return nil
}

// generateFunction performs symbolic execution over a function and generates test cases.
func generateFunction(ctx context.Context, fn *ssa.Function, log *logrus.Logger, useVase bool) error {
	var buf bytes.Buffer
	format.Node(&buf, token.NewFileSet(), fn.Syntax())

	log.Debug("[begin]")
	log.Debug(buf.String())

	z3Solver := z3.NewSolver()
	defer z3Solver.Close()

	e := vase.NewExecutor(fn)
	if useVase {
		store := vase.NewValueStore(log)
		e.Solver = vase.NewSolverFacade(z3Solver, store, generateOptions)
	} else {
		e.Solver = z3Solver
	}

	for {
		state, err := e.ExecuteNextState()
		if err == vase.ErrNoStateAvailable {
			break
		} else if err != nil {
			return err
		}

		// Report when a new state occurs.
		if !state.Terminated() {
			fmt.Printf("non-terminal state#%d\n", state.ID())
			fmt.Println("")
			continue
		}

		// If we reach a terminal state then generate test case from solution.
		fmt.Printf("terminal state#%d\n", state.ID())

		// Copy the AST node for the function.
		syntax := astutil.Clone(fn.Syntax())

		arrays, values, err := state.Values()
		if err != nil {
			return err
		}
		for i, array := range arrays {
			value := values[i]
			fmt.Printf("%s => %x\n", array.String(), value)
		}

		// Print new test case.
		format.Node(os.Stdout, token.NewFileSet(), syntax)
	}

	log.Debug("[end]")
	log.Debug("")

	return nil
}
