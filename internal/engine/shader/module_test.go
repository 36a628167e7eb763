package shader

import (
	"strings"
	"testing"
)

func TestBuildSelectsModules(t *testing.T) {
	tests := []struct {
		name     string
		base     Base
		features Features
		want     []string // substrings that must appear
		absent   []string
	}{
		{
			name:   "plain toon",
			base:   Toon,
			want:   []string{"uniform vec3 uBaseColor;", "return uShadowColor;", "return c;", "return p;"},
			absent: []string{"uBones", "uMap", "uPlaceholderColor", "aSkinIndex"},
		},
		{
			name:     "textured toon",
			base:     Toon,
			features: Textured,
			want:     []string{"uniform sampler2D uMap;", "base * 0.55"},
			absent:   []string{"return uShadowColor;"},
		},
		{
			name:     "skinned revealing toon",
			base:     Toon,
			features: Skinning | ColourReveal,
			want: []string{
				"uniform mat4 uBones[64];",
				"layout(location = 3) in uvec4 aSkinIndex;",
				"uniform vec3 uPlaceholderColor;",
				"mix(uPlaceholderColor, c,",
			},
		},
		{
			name:     "ink with gaps",
			base:     Ink,
			features: InkGaps,
			want:     []string{"uniform float uGapThreshold;", "43758.5453", "vObjectPos = aPosition;"},
			absent:   []string{"uBaseColor", "surfaceColour"},
		},
		{
			name:     "solid ink",
			base:     Ink,
			features: 0,
			want:     []string{"float inkMask(vec3 p) {\n    return 1.0;"},
			absent:   []string{"uSeed", "valueNoise"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Build(tt.base, tt.features)
			all := src.Vertex + src.Fragment
			for _, s := range tt.want {
				if !strings.Contains(all, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(all, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}
}

func TestBuildHeaderAndOrder(t *testing.T) {
	src := Build(Toon, Skinning|Textured|ColourReveal)
	for _, stage := range []string{src.Vertex, src.Fragment} {
		if !strings.HasPrefix(stage, Version) {
			t.Errorf("stage does not start with version header: %q", stage[:20])
		}
		if strings.Count(stage, "void main()") != 1 {
			t.Errorf("want exactly one main, got %d", strings.Count(stage, "void main()"))
		}
	}

	// Modules are emitted before the base main that calls them.
	if i, j := strings.Index(src.Vertex, "vec4 skinPosition"), strings.Index(src.Vertex, "void main()"); i < 0 || i > j {
		t.Error("skinPosition not defined before main")
	}
	if i, j := strings.Index(src.Fragment, "vec3 revealColour"), strings.Index(src.Fragment, "void main()"); i < 0 || i > j {
		t.Error("revealColour not defined before main")
	}
}

func TestBuildIgnoresUnsupportedFeatures(t *testing.T) {
	ink := Build(Ink, InkGaps|Textured|ColourReveal)
	if ink.Features != InkGaps {
		t.Errorf("features = %v, want %v", ink.Features, InkGaps)
	}
	if ink.HasUniform(UMap) || ink.HasUniform(UPlaceholderColor) {
		t.Error("ink program declares toon-only uniforms")
	}
	if got, want := ink.Key(), "ink/ink-gaps"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(Toon, Skinning|ColourReveal)
	b := Build(Toon, ColourReveal|Skinning)
	if a.Vertex != b.Vertex || a.Fragment != b.Fragment {
		t.Error("same feature set produced different sources")
	}
}

func TestUniformLists(t *testing.T) {
	toon := Build(Toon, ColourReveal)
	for _, name := range []string{UBaseColor, UShadowColor, ULightDir, ULitThreshold, UMidThreshold, UOpacity, URevealProgress, UPlaceholderColor} {
		if !toon.HasUniform(name) {
			t.Errorf("toon program missing %s", name)
		}
	}

	ink := Build(Ink, InkGaps)
	for _, name := range []string{ULineColor, USeed, UGapFrequency, UGapThreshold, UWobble, UOpacity, URevealProgress} {
		if !ink.HasUniform(name) {
			t.Errorf("ink program missing %s", name)
		}
	}

	seen := make(map[string]bool)
	for _, u := range toon.Uniforms {
		if seen[u.Name] {
			t.Errorf("uniform %s declared twice", u.Name)
		}
		seen[u.Name] = true
	}
}

func TestFeaturesString(t *testing.T) {
	tests := []struct {
		f    Features
		want string
	}{
		{0, "none"},
		{Skinning, "skinning"},
		{Textured | Skinning, "skinning+texture"},
		{InkGaps | ColourReveal, "colour-reveal+ink-gaps"},
	}
	for _, tt := range tests {
		if got := tt.f.String(); got != tt.want {
			t.Errorf("Features(%d).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}
