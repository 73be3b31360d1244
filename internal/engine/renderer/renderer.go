// Package renderer draws uploaded meshes with a single Phong program.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/engine/glmesh"
	"github.com/Faultbox/meshkit/internal/engine/shader"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/vertex"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
	Wireframe  bool
	LightDir   mgl32.Vec3 // direction light travels
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program
}

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	if cfg.LightDir.Len() == 0 {
		cfg.LightDir = mgl32.Vec3{-0.4, -1, -0.6}
	}
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.program, err = shader.CompileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	logger.Debug("shader program created", zap.Uint32("program", r.program.ID))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.program != nil {
		r.program.Delete()
	}
}

// Bind assigns layout locations from the renderer's program. It returns the
// bound layout and the number of attributes the program consumes.
func (r *Renderer) Bind(layout vertex.Layout) (vertex.Layout, int) {
	n := layout.AssignLocations(r.program.AttribLocation)
	return layout, n
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// ToggleWireframe switches between filled and line rasterization.
func (r *Renderer) ToggleWireframe() {
	r.config.Wireframe = !r.config.Wireframe
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// Frame holds per-frame camera state.
type Frame struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
	HasNormals bool
}

// Draw renders m with the model matrix.
func (r *Renderer) Draw(m *glmesh.Mesh, model mgl32.Mat4, f Frame) {
	r.program.Use()
	r.program.SetMat4("uModel", model)
	r.program.SetMat4("uView", f.View)
	r.program.SetMat4("uProjection", f.Projection)
	r.program.SetMat3("uNormalMatrix", model.Mat3().Inv().Transpose())
	r.program.SetVec3("uEye", f.Eye)
	r.program.SetVec3("uLightDir", r.config.LightDir.Normalize())
	r.program.SetBool("uHasNormals", f.HasNormals)
	r.program.SetBool("uUnlit", false)
	m.Draw()
}

// DrawUnlit renders m in a flat color, for debug lines.
func (r *Renderer) DrawUnlit(m *glmesh.Mesh, color mgl32.Vec3, f Frame) {
	r.program.Use()
	r.program.SetMat4("uModel", mgl32.Ident4())
	r.program.SetMat4("uView", f.View)
	r.program.SetMat4("uProjection", f.Projection)
	r.program.SetBool("uUnlit", true)
	r.program.SetVec3("uColor", color)
	m.Draw()
}

// ReadPixels returns the RGBA contents of the back buffer, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

const vertexShaderSource = `
#version 410 core

in vec3 position;
in vec3 normal;
in vec2 texcoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vTexCoord;

void main() {
	vec4 world = uModel * vec4(position, 1.0);
	vWorldPos = world.xyz;
	vNormal = uNormalMatrix * normal;
	vTexCoord = texcoord;
	gl_Position = uProjection * uView * world;
}
`

const fragmentShaderSource = `
#version 410 core

in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vTexCoord;

uniform vec3 uEye;
uniform vec3 uLightDir;
uniform bool uHasNormals;
uniform bool uUnlit;
uniform vec3 uColor;

out vec4 FragColor;

void main() {
	if (uUnlit) {
		FragColor = vec4(uColor, 1.0);
		return;
	}
	vec3 n;
	if (uHasNormals) {
		n = normalize(vNormal);
	} else {
		n = normalize(cross(dFdx(vWorldPos), dFdy(vWorldPos)));
	}
	vec3 l = normalize(-uLightDir);
	vec3 v = normalize(uEye - vWorldPos);
	vec3 h = normalize(l + v);

	vec3 base = mix(vec3(0.75), vec3(vTexCoord, 0.6), 0.25);
	float diffuse = max(dot(n, l), 0.0);
	float specular = pow(max(dot(n, h), 0.0), 32.0);

	FragColor = vec4(base * (0.15 + 0.85 * diffuse) + vec3(0.2) * specular, 1.0);
}
`
