// objinfo inspects Wavefront OBJ models without opening a window.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objviewer/internal/config"
	"github.com/Faultbox/objviewer/internal/engine/gpu"
	"github.com/Faultbox/objviewer/internal/engine/model"
	"github.com/Faultbox/objviewer/internal/engine/texture"
	"github.com/Faultbox/objviewer/internal/importer"
	"github.com/Faultbox/objviewer/internal/logger"
	"github.com/Faultbox/objviewer/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Release problems surface on stderr even without -v
	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "materials", "mtl":
		err = cmdMaterials(os.Stdout, args)
	case "submeshes", "sub":
		err = cmdSubMeshes(os.Stdout, args)
	case "warnings", "warn":
		err = cmdWarnings(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objinfo - Wavefront OBJ model inspector

Usage:
  objinfo <command> [options] <file.obj>

Commands:
  info <file.obj>         Show mesh statistics
  materials <file.obj>    List materials and their textures
  submeshes <file.obj>    List submeshes with their material and sizes
  warnings <file.obj>     Show import diagnostics

Options (info, submeshes, warnings):
  -dedup <hash|linear>                    Vertex dedup strategy
  -partition <contiguous|material|legacy> Submesh partition policy
  -v                                      Log import details to stderr

Examples:
  objinfo info ship.obj
  objinfo submeshes -partition material ship.obj`)
}

// session is one headless import.
type session struct {
	device   *gpu.MemoryDevice
	textures *texture.Cache
	mesh     *model.Mesh
}

// close releases the mesh and every cached texture. Failures are logged
// and returned.
func (s *session) close() error {
	var err error
	if s.mesh != nil {
		err = multierr.Append(err, s.mesh.Destroy())
	}
	err = multierr.Append(err, s.textures.Purge())
	if err != nil {
		logger.Warn("failed to release GPU objects", zap.Error(err))
	}
	return err
}

// importFlags parses the shared import options and imports the model.
func importFlags(name string, args []string) (*session, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dedup := fs.String("dedup", "hash", "Vertex dedup strategy: hash or linear")
	partition := fs.String("partition", "contiguous", "Submesh partition: contiguous, material or legacy")
	verbose := fs.Bool("v", false, "Log import details to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("usage: objinfo %s [options] <file.obj>", name)
	}

	if *verbose {
		if err := logger.Init("debug", ""); err != nil {
			return nil, err
		}
	}

	cfg := config.Default().Import
	cfg.Dedup = *dedup
	cfg.Partition = *partition

	s := &session{device: gpu.NewMemoryDevice()}
	s.textures = texture.NewCache(s.device, 0)

	opts, err := importer.Options(cfg, s.textures)
	if err != nil {
		return nil, err
	}
	s.mesh, err = model.Import(s.device, fs.Arg(0), opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func cmdInfo(w io.Writer, args []string) error {
	s, err := importFlags("info", args)
	if err != nil {
		return err
	}
	defer s.close()

	m := s.mesh
	st := m.Stats()
	b := m.Bounds()

	fmt.Fprintf(w, "File:       %s\n", m.Path())
	fmt.Fprintf(w, "Submeshes:  %d (%d empty)\n", st.SubMeshes, st.EmptySubMeshes)
	fmt.Fprintf(w, "Materials:  %d\n", st.Materials)
	fmt.Fprintf(w, "Vertices:   %d\n", st.Vertices)
	fmt.Fprintf(w, "Triangles:  %d\n", st.Indices/3)
	fmt.Fprintf(w, "Textures:   %d\n", s.textures.Len())
	fmt.Fprintf(w, "GPU memory: %.2f KB\n", float64(s.device.BytesInUse())/1024)
	fmt.Fprintf(w, "Bounds:     (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	fmt.Fprintf(w, "Warnings:   %d\n", len(m.Warnings()))
	return nil
}

func cmdSubMeshes(w io.Writer, args []string) error {
	s, err := importFlags("submeshes", args)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Fprintf(w, "%-4s %-20s %-16s %8s %8s  %s\n", "#", "SHAPE", "MATERIAL", "VERTICES", "INDICES", "OWNER")
	subs := s.mesh.SubMeshes()
	for i := range subs {
		sm := &subs[i]
		mat := s.mesh.MaterialFor(sm)
		fmt.Fprintf(w, "%-4d %-20s %-16s %8d %8d  %s\n",
			i, sm.Name, mat.Name, sm.VertexCount, sm.IndexCount, sm.Ownership)
	}
	return nil
}

func cmdWarnings(w io.Writer, args []string) error {
	s, err := importFlags("warnings", args)
	if err != nil {
		return err
	}
	defer s.close()

	warnings := s.mesh.Warnings()
	if len(warnings) == 0 {
		fmt.Fprintln(w, "No warnings")
		return nil
	}
	for _, msg := range warnings {
		fmt.Fprintln(w, msg)
	}
	return nil
}

func cmdMaterials(w io.Writer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: objinfo materials <file.obj>")
	}

	obj, err := formats.LoadOBJ(args[0])
	if err != nil {
		return err
	}

	if len(obj.Materials) == 0 {
		fmt.Fprintln(w, "No materials")
		return nil
	}
	for i, m := range obj.Materials {
		fmt.Fprintf(w, "[%d] %s\n", i, m.Name)
		fmt.Fprintf(w, "    Ka %.3f %.3f %.3f\n", m.Ambient[0], m.Ambient[1], m.Ambient[2])
		fmt.Fprintf(w, "    Kd %.3f %.3f %.3f\n", m.Diffuse[0], m.Diffuse[1], m.Diffuse[2])
		fmt.Fprintf(w, "    Ks %.3f %.3f %.3f\n", m.Specular[0], m.Specular[1], m.Specular[2])
		fmt.Fprintf(w, "    Ns %.1f\n", m.Shininess)
		for _, tex := range []struct{ key, name string }{
			{"map_Ka", m.AmbientTexname},
			{"map_Kd", m.DiffuseTexname},
			{"map_Ks", m.SpecularTexname},
			{"bump", m.BumpTexname},
		} {
			if tex.name != "" {
				fmt.Fprintf(w, "    %-6s %s\n", tex.key, tex.name)
			}
		}
	}
	return nil
}
