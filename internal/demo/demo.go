// Package demo builds the viewer's showcase scene: a hard-edged cube, the
// same cube with fan-split faces, and an L block bent by a two-bone skin.
package demo

import (
	gomath "math"

	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/internal/engine/material"
	"github.com/Faultbox/inkreveal/internal/engine/scene"
	"github.com/Faultbox/inkreveal/internal/engine/texture"
	"github.com/Faultbox/inkreveal/internal/engine/theme"
	"github.com/Faultbox/inkreveal/pkg/math"
)

// Entity names.
const (
	Cube    = "cube"
	FanCube = "cube-fan"
	LBlock  = "lblock"
)

// Spacing between entity roots along X.
const Spacing = 3.5

// Motion constants.
const (
	SpinSpeed = 0.4 // radians per second
	BendSpeed = 1.3 // radians per second of the bend cycle
	MaxBend   = 0.5 // radians
)

// Scene is the demo graph plus the handles animation needs.
type Scene struct {
	Graph    *scene.Graph
	Roots    []scene.Handle
	Spinner  scene.Handle
	Skeleton *scene.Skeleton

	clock float32
}

// Build creates the three demo entities. A non-nil tex is applied to the
// fan-split cube through a pre-made toon program bound to bus.
func Build(bus *theme.Bus, opts material.ToonOptions, tex *texture.Texture) (*Scene, error) {
	s := &Scene{Graph: scene.New(), Skeleton: scene.NewSkeleton(2)}

	cube, err := s.add(Cube, -Spacing, geometry.Box(1.6, false), nil, nil)
	if err != nil {
		return nil, err
	}

	var fanMat *material.Program
	if tex != nil {
		topts := opts
		topts.Texture = tex
		fanMat = material.NewToon(FanCube, bus, topts)
	}
	fan, err := s.add(FanCube, 0, geometry.Box(1.6, true), fanMat, nil)
	if err != nil {
		return nil, err
	}

	block := geometry.WithLinearSkin(geometry.LBlock(1), 0, 2)
	lb, err := s.add(LBlock, Spacing, block, nil, s.Skeleton)
	if err != nil {
		return nil, err
	}

	s.Roots = []scene.Handle{cube, fan, lb}
	s.Spinner = fan
	return s, nil
}

func (s *Scene) add(name string, x float32, mesh *geometry.MeshGeometry, mat *material.Program, skel *scene.Skeleton) (scene.Handle, error) {
	rt := scene.IdentityTransform()
	rt.Position = math.Vec3{X: x}
	root, err := s.Graph.Add(scene.Node{Name: name + "/root", Transform: rt}, scene.Nil)
	if err != nil {
		return scene.Nil, err
	}

	mt := scene.IdentityTransform()
	if name == LBlock {
		// Centre the L profile on its root.
		mt.Position = math.Vec3{X: -1, Y: -1}
	}
	_, err = s.Graph.Add(scene.Node{
		Name:      name,
		Kind:      scene.Mesh,
		Transform: mt,
		Mesh:      mesh,
		Material:  mat,
		Skeleton:  skel,
	}, root)
	if err != nil {
		return scene.Nil, err
	}
	return root, nil
}

// Bounds returns a box enclosing every entity at rest.
func (s *Scene) Bounds() (lo, hi math.Vec3) {
	return math.Vec3{X: -Spacing - 1.5, Y: -1.5, Z: -1.5}, math.Vec3{X: Spacing + 1.5, Y: 1.5, Z: 1.5}
}

// Animate spins the fan cube and bends the upper half of the L block.
func (s *Scene) Animate(dt float32) {
	s.clock += dt

	if n := s.Graph.Get(s.Spinner); n != nil {
		n.Transform.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, s.clock*SpinSpeed)
	}

	bend := MaxBend * float32(gomath.Sin(float64(s.clock*BendSpeed)))
	s.Skeleton.Bones[1] = BendAbout(math.Vec3{X: 1, Y: 1}, bend)
}

// BendAbout rotates around the Z axis through pivot.
func BendAbout(pivot math.Vec3, angle float32) math.Mat4 {
	rot := math.QuatFromAxisAngle(math.Vec3{Z: 1}, angle).ToMat4()
	return math.Translate(pivot.X, pivot.Y, pivot.Z).Mul(rot).Mul(math.Translate(-pivot.X, -pivot.Y, -pivot.Z))
}
