package main

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRunSummary(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-shape", "cube"}, "Segments:     12 "},
		{[]string{"-shape", "cube4"}, "Segments:     12 "},
		{[]string{"-shape", "lblock"}, "Segments:     20 "},
		{[]string{"-shape", "fold", "-fold", "20"}, "Segments:     6 "},
		{[]string{"-shape", "tris", "-n", "3"}, "Segments:     9 "},
		{[]string{"-shape", "cube", "-threshold", "179"}, "Segments:     0 "},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if err := run(tt.args, &out); err != nil {
			t.Errorf("run(%v): %v", tt.args, err)
			continue
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("run(%v) output:\n%s\nwant it to contain %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestRunYAML(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-shape", "cube", "-skin", "-yaml"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var d dump
	if err := yaml.Unmarshal(out.Bytes(), &d); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}
	if d.Shape != "cube" || !d.Skinned {
		t.Errorf("shape %q skinned %v", d.Shape, d.Skinned)
	}
	if len(d.Segments) != 12 || d.Stats.Retained != 12 {
		t.Errorf("segments = %d, retained = %d, want 12", len(d.Segments), d.Stats.Retained)
	}
	for _, s := range d.Segments {
		for _, p := range [][3]float32{s.A, s.B} {
			for _, c := range p {
				if c != 1 && c != -1 {
					t.Fatalf("cube corner %v off the +-1 grid", p)
				}
			}
		}
	}
}

func TestRunErrors(t *testing.T) {
	tests := [][]string{
		{"-shape", "torus"},
		{"-shape", "tris", "-n", "0"},
		{"-threshold", "200"},
	}
	for _, args := range tests {
		if err := run(args, &bytes.Buffer{}); err == nil {
			t.Errorf("run(%v) succeeded, want error", args)
		}
	}
}
