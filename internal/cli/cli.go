package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/launchgrid/internal/app"
	"github.com/specialistvlad/launchgrid/internal/config"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes.
const (
	ExitFailure = 1 // the plan could not be built or a process failed
	ExitUsage   = 2 // bad flags, overrides or descriptor
)

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

func failure(err error) error {
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// options are the flags shared by every command.
type options struct {
	logLevel   string
	logFormat  string
	prefixPath string
}

// Execute runs the command line in args. Results go to outW; logs and
// usage errors go to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	env, err := config.ParseEnv()
	if err != nil {
		return usageError(err)
	}
	cmd := NewRootCommand(env, outW, errW)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Anything else comes from cobra's own flag and argument checks.
		return usageError(err)
	}
	return nil
}

// NewRootCommand builds the launchgrid command tree with env supplying the
// flag defaults.
func NewRootCommand(env config.Env, outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "launchgrid",
		Short: "Resolve and run declarative process launch descriptors",
		Long: `launchgrid reads a launch descriptor written in HCL, resolves its arguments,
conditions and parameter layers, and prints or runs the resulting plan.

Arguments are overridden with name:=value pairs after the descriptor path.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", env.LogLevel, "Logging level: debug, info, warn or error (env LAUNCHGRID_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", env.LogFormat, "Log output format: text or json (env LAUNCHGRID_LOG_FORMAT)")
	flags.StringVar(&opts.prefixPath, "prefix-path", env.PrefixPath, "Install prefixes searched for packages (env AMENT_PREFIX_PATH)")

	root.AddCommand(
		newPlanCommand(opts, outW, errW),
		newRunCommand(opts, env, outW, errW),
		newArgsCommand(opts, outW, errW),
	)
	return root
}

func newPlanCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	var (
		output  string
		partial bool
	)
	cmd := &cobra.Command{
		Use:   "plan PATH [name:=value ...]",
		Short: "Print the resolved launch plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			render, ok := renderers[output]
			if !ok {
				return usageError(fmt.Errorf("invalid output format %q: must be json, yaml or table", output))
			}
			a, err := opts.newApp(args, outW, errW, func(c *app.Config) { c.Partial = partial })
			if err != nil {
				return err
			}
			plan, err := a.Plan(cmd.Context())
			if err != nil {
				return failure(err)
			}
			return render(outW, plan)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: json, yaml or table")
	cmd.Flags().BoolVar(&partial, "partial", false, "Drop processes whose parameter files fail to load instead of failing")
	return cmd
}

func newRunCommand(opts *options, env config.Env, outW, errW io.Writer) *cobra.Command {
	var (
		logDir     string
		healthPort int
		partial    bool
	)
	cmd := &cobra.Command{
		Use:   "run PATH [name:=value ...]",
		Short: "Launch and supervise every process of the plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(args, outW, errW, func(c *app.Config) {
				c.LogDir = logDir
				c.HealthcheckPort = healthPort
				c.Partial = partial
			})
			if err != nil {
				return err
			}
			if err := a.Run(cmd.Context()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", env.LogDir, "Directory for process log files (env LAUNCHGRID_LOG_DIR)")
	cmd.Flags().IntVar(&healthPort, "healthcheck-port", env.HealthcheckPort, "Port for the HTTP health check server. 0 is disabled. (env LAUNCHGRID_HEALTHCHECK_PORT)")
	cmd.Flags().BoolVar(&partial, "partial", false, "Drop processes whose parameter files fail to load instead of failing")
	return cmd
}

func newArgsCommand(opts *options, outW, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "args PATH",
		Short: "List the arguments a descriptor declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(args, outW, errW, nil)
			if err != nil {
				return err
			}
			return renderArguments(outW, a.Descriptor().Arguments())
		},
	}
}

// newApp validates the positional arguments and flags and loads the
// descriptor. Every error it returns is a usage error.
func (o *options) newApp(args []string, outW, errW io.Writer, customize func(*app.Config)) (*app.App, error) {
	overrides, err := ParseOverrides(args[1:])
	if err != nil {
		return nil, usageError(err)
	}
	cfg := app.Config{
		DescriptorPath: args[0],
		Overrides:      overrides,
		LogLevel:       strings.ToLower(o.logLevel),
		LogFormat:      strings.ToLower(o.logFormat),
		PrefixPath:     o.prefixPath,
	}
	if customize != nil {
		customize(&cfg)
	}
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parser finished successfully.", "path", validated.DescriptorPath, "overrides", len(overrides))

	a, err := app.NewApp(outW, errW, validated, app.HCLLoader)
	if err != nil {
		return nil, usageError(err)
	}
	return a, nil
}

// ParseOverrides turns `name:=value` pairs into an override map. The value
// may be empty and may itself contain ":=".
func ParseOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	var dups []string
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, ":=")
		if !ok {
			return nil, fmt.Errorf("invalid argument override %q: expected name:=value", pair)
		}
		if name == "" {
			return nil, fmt.Errorf("invalid argument override %q: empty name", pair)
		}
		if _, seen := overrides[name]; seen {
			dups = append(dups, name)
		}
		overrides[name] = value
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, fmt.Errorf("argument overridden more than once: %s", strings.Join(dups, ", "))
	}
	return overrides, nil
}
