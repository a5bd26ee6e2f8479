// Package shader compiles GLSL programs and holds the built-in sprite shader.
package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Uniform names every sprite program must declare.
const (
	UniformModelView  = "modelview"
	UniformProjection = "projection"
	UniformColour     = "colour"
	UniformTexture    = "sprite"
)

// Vertex attribute locations used by the sprite vertex layout (x, y, u, v).
const (
	AttribPosition = 0
	AttribTexCoord = 1
)

// SpriteVertex transforms unit-space positions by the modelview and
// projection matrices and forwards the tint.
const SpriteVertex = `#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aTexCoord;

uniform mat4 modelview;
uniform mat4 projection;
uniform vec4 colour;

out vec2 vTexCoord;
out vec4 vColour;

void main() {
    gl_Position = projection * modelview * vec4(aPos, 0.0, 1.0);
    vTexCoord = aTexCoord;
    vColour = colour;
}
`

// SpriteFragment samples the bound texture and multiplies by the tint.
const SpriteFragment = `#version 410 core

in vec2 vTexCoord;
in vec4 vColour;

uniform sampler2D sprite;

out vec4 FragColor;

void main() {
    FragColor = texture(sprite, vTexCoord) * vColour;
}
`

// Uniforms holds the uniform locations of a sprite program.
// Missing uniforms have location -1 and uploads to them are ignored by GL.
type Uniforms struct {
	ModelView  int32
	Projection int32
	Colour     int32
	Texture    int32
}

// Locate looks up the sprite uniforms of program.
func Locate(program uint32) Uniforms {
	return Uniforms{
		ModelView:  GetUniform(program, UniformModelView),
		Projection: GetUniform(program, UniformProjection),
		Colour:     GetUniform(program, UniformColour),
		Texture:    GetUniform(program, UniformTexture),
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
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
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}

	// Samplers default to unit 0; set it explicitly for drivers that don't.
	gl.UseProgram(program)
	if loc := GetUniform(program, UniformTexture); loc >= 0 {
		gl.Uniform1i(loc, 0)
	}

	return program, nil
}

// CompileSprite builds the built-in sprite program.
func CompileSprite() (uint32, error) {
	return CompileProgram(SpriteVertex, SpriteFragment)
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
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name, or -1.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
