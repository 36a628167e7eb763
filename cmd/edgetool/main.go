// edgetool extracts ink outlines from the built-in primitives and reports
// what was found, or dumps the segments as YAML.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/inkreveal/internal/engine/edges"
	"github.com/Faultbox/inkreveal/internal/engine/geometry"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	shape      string
	threshold  float64
	offset     float64
	fold       float64
	count      int
	skin       bool
	nonIndexed bool
	dumpYAML   bool
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("edgetool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.shape, "shape", "cube", "Primitive: cube|cube4|lblock|fold|tris")
	fs.Float64Var(&o.threshold, "threshold", edges.DefaultOptions().ThresholdAngle, "Crease threshold angle in degrees")
	fs.Float64Var(&o.offset, "offset", 0, "Crease offset along the averaged face normal")
	fs.Float64Var(&o.fold, "fold", 90, "Hinge angle of the fold shape in degrees")
	fs.IntVar(&o.count, "n", 4, "Triangle count of the tris shape")
	fs.BoolVar(&o.skin, "skin", false, "Attach a two-joint linear skin")
	fs.BoolVar(&o.nonIndexed, "nonindexed", false, "Expand the index buffer first")
	fs.BoolVar(&o.dumpYAML, "yaml", false, "Dump segments as YAML")
	fs.Usage = func() {
		fmt.Fprintln(stderr, `edgetool - outline extraction inspector

Usage:
  edgetool [options]

Examples:
  edgetool -shape cube
  edgetool -shape fold -fold 20 -threshold 30
  edgetool -shape lblock -offset 0.01 -yaml`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.threshold < 0 || o.threshold > 180 {
		return o, fmt.Errorf("threshold %v outside [0, 180]", o.threshold)
	}
	return o, nil
}

func buildShape(o options) (*geometry.MeshGeometry, error) {
	var m *geometry.MeshGeometry
	switch o.shape {
	case "cube":
		m = geometry.Box(2, false)
	case "cube4":
		m = geometry.Box(2, true)
	case "lblock":
		m = geometry.LBlock(1)
	case "fold":
		m = geometry.Fold(o.fold)
	case "tris":
		if o.count <= 0 {
			return nil, fmt.Errorf("triangle count %d must be positive", o.count)
		}
		m = geometry.IsolatedTriangles(o.count)
	default:
		return nil, fmt.Errorf("unknown shape %q", o.shape)
	}
	if o.skin {
		m = geometry.WithLinearSkin(m, -1, 2)
	}
	if o.nonIndexed {
		m = m.ToNonIndexed()
	}
	return m, nil
}

// segment is one dumped line segment.
type segment struct {
	A [3]float32 `yaml:"a,flow"`
	B [3]float32 `yaml:"b,flow"`
}

type stats struct {
	Triangles   int `yaml:"triangles"`
	Degenerate  int `yaml:"degenerate"`
	Edges       int `yaml:"edges"`
	Boundary    int `yaml:"boundary"`
	Crease      int `yaml:"crease"`
	NonManifold int `yaml:"non_manifold"`
	Retained    int `yaml:"retained"`
}

type dump struct {
	Shape          string    `yaml:"shape"`
	ThresholdAngle float64   `yaml:"threshold_angle"`
	CreaseOffset   float64   `yaml:"crease_offset"`
	Skinned        bool      `yaml:"skinned"`
	Stats          stats     `yaml:"stats"`
	Segments       []segment `yaml:"segments"`
}

func run(args []string, stdout io.Writer) error {
	o, err := parseArgs(args, os.Stderr)
	if err != nil {
		return err
	}
	mesh, err := buildShape(o)
	if err != nil {
		return err
	}

	lines, st, err := edges.ExtractWithStats(mesh, edges.Options{
		ThresholdAngle: o.threshold,
		CreaseOffset:   float32(o.offset),
	})
	if err != nil {
		return err
	}

	d := dump{
		Shape:          o.shape,
		ThresholdAngle: o.threshold,
		CreaseOffset:   o.offset,
		Skinned:        lines.Skinned(),
		Stats: stats{
			Triangles:   st.Triangles,
			Degenerate:  st.Degenerate,
			Edges:       st.Edges,
			Boundary:    st.Boundary,
			Crease:      st.Crease,
			NonManifold: st.NonManifold,
			Retained:    st.Retained(),
		},
	}

	if !o.dumpYAML {
		fmt.Fprintf(stdout, "Shape:        %s\n", d.Shape)
		fmt.Fprintf(stdout, "Threshold:    %.1f°\n", d.ThresholdAngle)
		fmt.Fprintf(stdout, "Triangles:    %d (%d degenerate)\n", st.Triangles, st.Degenerate)
		fmt.Fprintf(stdout, "Edges:        %d distinct\n", st.Edges)
		fmt.Fprintf(stdout, "Segments:     %d (boundary %d, crease %d, non-manifold %d)\n",
			st.Retained(), st.Boundary, st.Crease, st.NonManifold)
		fmt.Fprintf(stdout, "Total length: %.4f\n", lines.TotalLength())
		return nil
	}

	d.Segments = make([]segment, lines.SegmentCount())
	for i := range d.Segments {
		a, b := lines.Segment(i)
		d.Segments[i] = segment{A: a.Array(), B: b.Array()}
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
