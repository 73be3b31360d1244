package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/viewer"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

func cmdView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	watchFile := fs.Bool("watch", false, "Reload the file when it changes on disk")
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageError("meshtool view [-watch] <file.obj>")
	}
	path := fs.Arg(0)

	v, err := viewer.New(cfg.Viewer, "meshtool - "+filepath.Base(path))
	if err != nil {
		return err
	}
	defer v.Close()

	if err := load(v, cfg, path); err != nil {
		return err
	}

	reload := func(p string) {
		v.Clear()
		if err := load(v, cfg, p); err != nil {
			logger.Warn("failed to load file", zap.String("path", p), zap.Error(err))
		}
	}
	if *watchFile {
		if err := v.Watch(path, reload); err != nil {
			return err
		}
	}
	v.OnDrop = func(dropped string) {
		reload(dropped)
		if *watchFile {
			if err := v.Watch(dropped, reload); err != nil {
				logger.Warn("cannot watch dropped file", zap.String("path", dropped), zap.Error(err))
			}
		}
	}

	return v.Run()
}

// load imports path with the configured index width and adds every object
// to the viewer.
func load(v *viewer.Viewer, cfg *config.Config, path string) error {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}
	switch cfg.Import.IndexWidth {
	case 8:
		return addAll[uint8](v, cfg, obj)
	case 16:
		return addAll[uint16](v, cfg, obj)
	default:
		return addAll[uint32](v, cfg, obj)
	}
}

func addAll[I mesh.Index](v *viewer.Viewer, cfg *config.Config, obj *formats.OBJ) error {
	meshes, err := buildMeshes[I](cfg, obj)
	if err != nil {
		return err
	}
	for i, nm := range meshes {
		name := nm.Name
		if name == "" {
			name = fmt.Sprintf("object%d", i)
		}
		if err := viewer.Add(v, name, nm.Mesh); err != nil {
			return err
		}
	}
	return nil
}
