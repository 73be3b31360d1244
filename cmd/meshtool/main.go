// meshtool is a CLI utility for importing, inspecting and converting meshes.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "convert", "c":
		err = cmdConvert(args)
	case "batch", "b":
		err = cmdBatch(args)
	case "dump":
		err = cmdDump(args)
	case "view", "v":
		err = cmdView(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`meshtool - mesh import and indexing utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.obj>                    Show streams, objects and dedup statistics
  convert <file.obj> <out.glb|gltf>  Unify and export to glTF 2.0
  batch -o <dir> <file.obj>...       Convert many files into a directory
  dump <file.obj>                    Print layout, indices and vertices
  view <file.obj>                    Open the interactive viewer
  config [path]                      Write the default config file

Common options:
  -config <path>   Config file (default ./meshkit.yaml or user config dir)
  -index 8|16|32   Index width in bits
  -dedup scan|hashed
  -restart         Keep polygons as restart-delimited triangle fans
  -debug           Enable debug logging

Examples:
  meshtool info teapot.obj
  meshtool convert -index 16 teapot.obj teapot.glb
  meshtool batch -o out/ models/*.obj
  meshtool dump -n 12 cube.obj
  meshtool view -watch -restart -width 1920 -height 1080 scene.obj`)
}

// setup parses the common flags plus any command flags registered on fs,
// loads the config and initializes the logger.
func setup(fs *flag.FlagSet, args []string) (*config.Config, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("meshtool info <file.obj>")
	}
	return runInfo(os.Stdout, cfg, fs.Arg(0))
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usageError("meshtool convert <file.obj> <out.glb|out.gltf>")
	}
	return runConvert(os.Stdout, cfg, fs.Arg(0), fs.Arg(1))
}

func cmdBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	outDir := fs.String("o", ".", "Output directory")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("meshtool batch [-o dir] <file.obj>...")
	}
	return runBatch(os.Stdout, cfg, *outDir, fs.Args())
}

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N indices and vertices (0 = all)")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("meshtool dump [-n N] <file.obj>")
	}
	return runDump(os.Stdout, cfg, fs.Arg(0), *limit)
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}

	if fs.NArg() > 0 {
		err = cfg.SaveTo(fs.Arg(0))
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println("Config written")
	return nil
}
