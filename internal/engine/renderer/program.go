package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/inkreveal/internal/engine/shader"
	"github.com/Faultbox/inkreveal/internal/logger"
)

// Compiled is a linked GL program with cached uniform locations.
type Compiled struct {
	ID     uint32
	Source shader.Source

	locations map[string]int32
}

// Compile builds and links src and looks up every declared uniform.
// Inactive uniforms (optimized out by the driver) get location -1.
func Compile(src shader.Source) (*Compiled, error) {
	id, err := CompileProgram(src.Vertex, src.Fragment)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", src.Key(), err)
	}

	c := &Compiled{ID: id, Source: src, locations: make(map[string]int32, len(src.Uniforms))}
	for _, u := range src.Uniforms {
		name := u.Name
		if u.Count > 0 {
			name += "[0]"
		}
		c.locations[u.Name] = GetUniform(id, name)
	}

	logger.Info("shader program compiled",
		zap.String("program", src.Key()),
		zap.Uint32("id", id),
		zap.Int("uniforms", len(src.Uniforms)))
	return c, nil
}

// Location returns the cached location of name, or -1.
func (c *Compiled) Location(name string) int32 {
	if loc, ok := c.locations[name]; ok {
		return loc
	}
	return -1
}

// Delete frees the GL program. Safe to call twice.
func (c *Compiled) Delete() {
	if c.ID != 0 {
		gl.DeleteProgram(c.ID)
		c.ID = 0
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := programLog(program)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

func programLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	log := make([]byte, logLen+1)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return string(log)
}

// GetUniform returns the uniform location for the given name, -1 if inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
