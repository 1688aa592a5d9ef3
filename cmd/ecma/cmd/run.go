package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/ecma/pkg/ecma"
)

// limitedWriter truncates console output at a configured byte budget
// rather than letting a runaway script exhaust the host terminal/log
// sink, per hostConfig.MaxOutputBytes.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.remaining <= 0 {
		return len(p), nil
	}
	n := len(p)
	if n > l.remaining {
		n = l.remaining
	}
	written, err := l.w.Write(p[:n])
	l.remaining -= written
	return len(p), err
}

var (
	evalExpr   string
	strict     bool
	configPath string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an ECMAScript file or expression",
	Long: `Execute an ECMAScript program from a file or inline expression.

Examples:
  # Run a script file
  ecma run script.js

  # Evaluate an inline expression
  ecma run -e "console.log('Hello, World!');"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&strict, "strict", false, "force strict mode regardless of source directives")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML file of host-hook policy (strict, maxOutputBytes)")
}

func runScript(_ *cobra.Command, args []string) error {
	var input string
	var filename string

	switch {
	case evalExpr != "":
		input = evalExpr
		filename = "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}

	forceStrict := strict
	var out io.Writer = os.Stdout
	if configPath != "" {
		cfg, err := loadHostConfig(configPath)
		if err != nil {
			return err
		}
		forceStrict = forceStrict || cfg.Strict
		if cfg.MaxOutputBytes > 0 {
			out = &limitedWriter{w: os.Stdout, remaining: cfg.MaxOutputBytes}
		}
	}

	engine, err := ecma.New(ecma.WithOutput(out), ecma.WithStrictMode(forceStrict))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[running %s]\n", filename)
	}

	if _, err := engine.Eval(input); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
