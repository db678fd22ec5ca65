package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/config"
	"github.com/wippyai/arrayio/machine"
	"github.com/wippyai/arrayio/native"
	"github.com/wippyai/arrayio/ops"
	"github.com/wippyai/arrayio/wasmhost"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a TOML host configuration")
		expr        = flag.String("e", "", "Expression to evaluate after the files")
		wasmFile    = flag.String("wasm", "", "WebAssembly guest to run against the arrayio host module")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log dispatches and host events to stderr")
	)
	flag.Parse()

	if flag.NArg() == 0 && *expr == "" && *wasmFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: arrayio [-config file.toml] [-v] file... [-e expr]")
		fmt.Fprintln(os.Stderr, "       arrayio -wasm guest.wasm")
		fmt.Fprintln(os.Stderr, "       arrayio -i  (interactive mode)")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := newLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	ops.SetLogger(logger)
	native.SetLogger(logger)

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, flag.Args(), *expr, *wasmFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// newBackend builds the native backend restricted to the capabilities cfg
// enables.
func newBackend(cfg *config.Config, stdout io.Writer) (*native.Backend, capability.Backend) {
	nb := native.New()
	if stdout != nil {
		nb.WithStdout(stdout)
	}
	display := native.NewTerminalDisplay(nb)
	display.Width, display.Height = cfg.Display.Width, cfg.Display.Height
	nb.WithDisplay(display)
	if cfg.Random.Seed != 0 {
		nb.WithSeed(cfg.Random.Seed)
	}
	return nb, capability.Mask(nb, cfg.Capabilities())
}

func run(cfg *config.Config, logger *zap.Logger, files []string, expr, wasmFile string) error {
	ctx := context.Background()

	nb, backend := newBackend(cfg, nil)
	defer nb.Close()

	m := machine.New(ops.New(backend))

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		logger.Debug("run file", zap.String("path", path))
		if err := m.Import(ctx, string(src), path); err != nil {
			return err
		}
	}

	if expr != "" {
		if err := m.Exec(ctx, expr); err != nil {
			return err
		}
	}

	if wasmFile != "" {
		if err := runWasm(ctx, m, logger, wasmFile); err != nil {
			return err
		}
	}

	return nil
}

func runWasm(ctx context.Context, m *machine.Machine, logger *zap.Logger, wasmFile string) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	host := wasmhost.New(m).WithLogger(logger)
	if _, err := host.Instantiate(ctx, rt); err != nil {
		return err
	}

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	// _start runs during instantiation for command modules.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithArgs(wasmFile))
	if err != nil {
		var exit *sys.ExitError
		if !errors.As(err, &exit) || exit.ExitCode() != 0 {
			return fmt.Errorf("instantiate: %w", err)
		}
		return guestError(host)
	}
	defer mod.Close(ctx)

	if run := mod.ExportedFunction("run"); run != nil {
		if _, err := run.Call(ctx); err != nil {
			return fmt.Errorf("call run: %w", err)
		}
	}
	return guestError(host)
}

func guestError(host *wasmhost.Host) error {
	if msg := host.LastError(); msg != "" {
		return fmt.Errorf("guest: %s", msg)
	}
	return nil
}
