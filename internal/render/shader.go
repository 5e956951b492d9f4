package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attribute locations match attribLocation.
const vertexShader = `
#version 410 core

layout (location = 0) in vec4 aPosition;
layout (location = 1) in vec4 aTexCoord0;
layout (location = 2) in vec4 aTexCoord1;
layout (location = 3) in vec4 aColor;
layout (location = 4) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;

out vec2 vTexCoord;
out vec4 vColor;
out vec3 vNormal;

void main() {
	vec4 world = uModel * vec4(aPosition.xyz, 1.0);
	gl_Position = uProj * uView * world;
	vTexCoord = aTexCoord0.xy;
	vColor = aColor;
	vNormal = mat3(uModel) * aNormal;
}
`

const fragmentShader = `
#version 410 core

in vec2 vTexCoord;
in vec4 vColor;
in vec3 vNormal;

uniform vec4 uAmbient;
uniform vec4 uDiffuse;
uniform vec3 uLightDir;
uniform bool uTextured;
uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
	vec4 base = uDiffuse * vColor;
	if (uTextured) {
		base *= texture(uTexture, vTexCoord);
	}
	if (base.a < 0.01) {
		discard;
	}
	float shade = 1.0;
	if (length(vNormal) > 0.0) {
		shade = max(dot(normalize(vNormal), -uLightDir), 0.35);
	}
	FragColor = vec4(uAmbient.rgb * base.rgb + base.rgb * shade, base.a);
}
`

// compileProgram compiles vertex and fragment shaders and links them.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %s", log)
	}
	return shader, nil
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
