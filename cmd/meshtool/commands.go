package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// indexOptions builds indexer options from the import config.
func indexOptions[I mesh.Index](cfg *config.Config) mesh.IndexOptions[I] {
	return mesh.IndexOptions[I]{Strategy: cfg.Strategy()}
}

// buildMeshes unifies every object of obj, as restart fans when the config
// asks for primitive restart.
func buildMeshes[I mesh.Index](cfg *config.Config, obj *formats.OBJ) ([]formats.NamedMesh[I], error) {
	if cfg.Import.PrimitiveRestart {
		return formats.BuildOBJFanMeshes(obj, indexOptions[I](cfg))
	}
	return formats.BuildOBJMeshes(obj, indexOptions[I](cfg))
}

func runInfo(w io.Writer, cfg *config.Config, path string) error {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Positions: %d\n", len(obj.Positions))
	fmt.Fprintf(w, "TexCoords: %d\n", len(obj.TexCoords))
	fmt.Fprintf(w, "Normals:   %d\n", len(obj.Normals))
	fmt.Fprintf(w, "Faces:     %s\n", obj.Format)
	fmt.Fprintf(w, "Objects:   %d\n", len(obj.Objects))
	fmt.Fprintf(w, "Indexing:  %d-bit, %s\n", cfg.Import.IndexWidth, cfg.Strategy())
	fmt.Fprintln(w)

	switch cfg.Import.IndexWidth {
	case 8:
		return printInfo[uint8](w, cfg, obj)
	case 16:
		return printInfo[uint16](w, cfg, obj)
	default:
		return printInfo[uint32](w, cfg, obj)
	}
}

func printInfo[I mesh.Index](w io.Writer, cfg *config.Config, obj *formats.OBJ) error {
	meshes, err := buildMeshes[I](cfg, obj)
	if err != nil {
		return err
	}

	arity := obj.Format.Arity()
	for i, nm := range meshes {
		o := obj.Objects[i]
		m := nm.Mesh
		name := nm.Name
		if name == "" {
			name = "(unnamed)"
		}

		tuples := len(o.Tuples) / arity
		ratio := 0.0
		if tuples > 0 {
			ratio = float64(m.VertexCount()) / float64(tuples)
		}

		fmt.Fprintf(w, "Object %s\n", name)
		fmt.Fprintf(w, "  Faces:     %d (%d triangles)\n", o.Faces, o.Triangles(arity))
		fmt.Fprintf(w, "  Primitive: %s\n", m.Primitive)
		fmt.Fprintf(w, "  Vertices:  %d unique of %d tuples (%.1f%%)\n", m.VertexCount(), tuples, ratio*100)
		fmt.Fprintf(w, "  Indices:   %d\n", len(m.Indices))
		fmt.Fprintf(w, "  Layout:    %s\n", m.Vertices.Layout)

		b, err := mesh.ComputeBounds(m.Vertices, formats.AttrPosition)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  Bounds:    min %v max %v\n", b.Min, b.Max)
	}
	return nil
}

func runConvert(w io.Writer, cfg *config.Config, in, out string) error {
	binary := cfg.Export.Binary
	switch strings.ToLower(filepath.Ext(out)) {
	case ".glb":
		binary = true
	case ".gltf":
		binary = false
	}

	switch cfg.Import.IndexWidth {
	case 8:
		return convert[uint8](w, cfg, in, out, binary)
	case 16:
		return convert[uint16](w, cfg, in, out, binary)
	default:
		return convert[uint32](w, cfg, in, out, binary)
	}
}

func convert[I mesh.Index](w io.Writer, cfg *config.Config, in, out string, binary bool) error {
	obj, err := formats.ParseOBJFile(in)
	if err != nil {
		return err
	}
	meshes, err := buildMeshes[I](cfg, obj)
	if err != nil {
		return err
	}
	if err := formats.WriteGLTF(out, meshes, binary); err != nil {
		return err
	}

	vertices, indices := 0, 0
	for _, nm := range meshes {
		vertices += nm.Mesh.VertexCount()
		indices += len(nm.Mesh.Indices)
	}
	fmt.Fprintf(w, "Converted: %s -> %s (%d meshes, %d vertices, %d indices)\n",
		in, out, len(meshes), vertices, indices)
	return nil
}

// runBatch converts every input into outDir, keeping the base name and
// replacing the extension with .glb or .gltf. Failures do not stop the
// batch; they are returned together.
func runBatch(w io.Writer, cfg *config.Config, outDir string, inputs []string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}

	ext := ".glb"
	if !cfg.Export.Binary {
		ext = ".gltf"
	}

	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)

	var errs error
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		out := filepath.Join(outDir, base+ext)

		if err := runConvert(io.Discard, cfg, in, out); err != nil {
			logger.Warn("conversion failed", zap.String("input", in), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", in, err))
		}
		bar.Add(1)
	}

	failed := len(multierr.Errors(errs))
	fmt.Fprintf(w, "Converted %d of %d files into %s\n", len(inputs)-failed, len(inputs), outDir)
	return errs
}

func runDump(w io.Writer, cfg *config.Config, path string, limit int) error {
	switch cfg.Import.IndexWidth {
	case 8:
		return dump[uint8](w, cfg, path, limit)
	case 16:
		return dump[uint16](w, cfg, path, limit)
	default:
		return dump[uint32](w, cfg, path, limit)
	}
}

func dump[I mesh.Index](w io.Writer, cfg *config.Config, path string, limit int) error {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}
	meshes, err := buildMeshes[I](cfg, obj)
	if err != nil {
		return err
	}

	for _, nm := range meshes {
		m := nm.Mesh
		fmt.Fprintf(w, "Object %q: %s, %d indices\n", nm.Name, m.Primitive, len(m.Indices))
		fmt.Fprintf(w, "Layout: %s\n", m.Vertices.Layout)

		fmt.Fprint(w, "Indices:")
		for i, idx := range m.Indices {
			if limit > 0 && i >= limit {
				fmt.Fprint(w, " ...")
				break
			}
			if m.Restart.Is(idx) {
				fmt.Fprint(w, " R")
				continue
			}
			fmt.Fprintf(w, " %d", idx)
		}
		fmt.Fprintln(w)

		for _, a := range m.Vertices.Layout.Attributes() {
			values, err := mesh.ReadVec3(m.Vertices, a.Name)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "%s:\n", a.Name)
			for i, v := range values {
				if limit > 0 && i >= limit {
					fmt.Fprintln(w, "  ...")
					break
				}
				fmt.Fprintf(w, "  %4d  %s\n", i, formatVec(v[:min(a.Count, 3)]))
			}
		}
	}
	return nil
}

func formatVec(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return strings.Join(parts, " ")
}
