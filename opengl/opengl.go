//go:build !nogl
// +build !nogl

// Package opengl displays a running boidswarm simulation in an OpenGL window.
package opengl

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/PrincetonUniversity/boidswarm"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.1/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Title      string
	Width      int    // initial window width in pixels
	Height     int    // initial window height in pixels
	Step       func() // go to next step
	ForcePause bool   // step manually only?

	// Resize, if not nil, is called with the new window size in pixels
	// whenever the window is resized.
	Resize func(width, height int)

	// CellGrid is the grid shown when coloring agents by cell.
	CellGrid boidswarm.Grid
}

// Run runs an interactive simulation in an OpenGL window.
// Agents are read between steps, never while a step runs.
func Run(s *boidswarm.Swarm, conf *Config) error {
	// init GLFW and OpenGL
	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	w, err := glfw.CreateWindow(conf.Width, conf.Height, conf.Title, nil, nil)
	if err != nil {
		return err
	}
	w.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return err
	}

	// set background color and enable alpha blending
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	w.SwapBuffers()

	// initialize OpenGL objects
	d, err := newDisplay(len(s.Agents))
	if err != nil {
		return err
	}

	var cam camera
	w.SetScrollCallback(func(w *glfw.Window, xo, yo float64) {
		cam.zoom(yo)
	})

	w.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
	})
	w.SetSizeCallback(func(w *glfw.Window, width, height int) {
		if conf.Resize != nil {
			conf.Resize(width, height)
		}
	})

	var quit, step, byCell bool
	pause := conf.ForcePause
	w.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mod glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			quit = true
		}
		if key == glfw.KeySpace && action == glfw.Press && !conf.ForcePause {
			pause = !pause
		}
		if key == glfw.KeyRight && (action == glfw.Press || action == glfw.Repeat) {
			if pause {
				pause = false
				step = true
			}
		}
		if key == glfw.KeyC && action == glfw.Press {
			byCell = !byCell
		}
		if key == glfw.KeyR && action == glfw.Press {
			cam = camera{}
		}
	})

	for !(quit || w.ShouldClose()) {
		if step {
			pause = true
			step = false
			conf.Step()
		}
		if !pause {
			conf.Step()
		}
		var colors [][4]float32
		if byCell && conf.CellGrid.Rows > 0 && conf.CellGrid.Cols > 0 {
			colors = s.CellColors(conf.CellGrid)
		}
		d.draw(s, colors, cam.projection(s.Bounds))
		w.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// A camera holds the zoom level chosen with the scroll wheel.
type camera struct {
	scale float32 // zoom as a power of 1.05, 0 shows the whole world
}

// zoom zooms in or out depending on the scroll offset.
func (c *camera) zoom(yo float64) {
	c.scale += float32(yo)
}

// projection returns the projection matrix showing the world bounds.
// 2D worlds are seen from above, 3D worlds through a perspective
// camera on the Z axis looking at the center of the box.
func (c camera) projection(b boidswarm.Bounds) mgl32.Mat4 {
	z := float32(math.Pow(1.05, float64(c.scale)))

	center := b.Min.Add(b.Max).Mul(0.5)
	ext := b.Extent()
	if b.Dim == 2 {
		hw, hh := float32(ext[0])/(2*z), float32(ext[1])/(2*z)
		cx, cy := float32(center[0]), float32(center[1])
		// screen coordinates: Y axis points down
		return mgl32.Ortho2D(cx-hw, cx+hw, cy+hh, cy-hh)
	}

	dist := float32(100+ext[2]/2) / z
	eye := mgl32.Vec3{float32(center[0]), float32(center[1]), float32(center[2]) + dist}
	target := mgl32.Vec3{float32(center[0]), float32(center[1]), float32(center[2])}
	view := mgl32.LookAtV(eye, target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), float32(ext[0]/ext[1]), 0.1, 10*dist)
	return proj.Mul4(view)
}

// A vertex is one corner of the triangle representing an agent.
type vertex struct {
	Pos   [3]float32
	Color [4]float32
}

// display contains all the OpenGL objects required to display the simulation.
type display struct {
	vao  uint32 // vertex array object
	vbo  uint32 // vertex buffer object
	prog uint32 // shader program
	uni  struct {
		proj int32 // projection matrix
	}
	verts []vertex
}

// draw updates the OpenGL buffers and draws the agents on screen.
// A nil colors slice colors agents by heading.
func (d *display) draw(s *boidswarm.Swarm, colors [][4]float32, proj mgl32.Mat4) {
	d.verts = d.verts[:0]
	for i, a := range s.Agents {
		var c [4]float32
		if colors != nil {
			c = colors[i]
		} else {
			c = headingColor(a.Vel)
		}
		for _, p := range triangle(a, s.Bounds.Dim) {
			d.verts = append(d.verts, vertex{Pos: p, Color: c})
		}
	}

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if len(d.verts) == 0 {
		return
	}
	gl.UseProgram(d.prog)
	gl.UniformMatrix4fv(d.uni.proj, 1, false, &proj[0])
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.verts)*int(unsafe.Sizeof(vertex{})), gl.Ptr(d.verts), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(d.verts)))
}

// headingColor returns the color of an agent moving with velocity v.
func headingColor(v mgl64.Vec3) [4]float32 {
	if l := v.Len(); l > 0 {
		v = v.Mul(1 / l)
	}
	return [4]float32{float32(v[0]), float32(v[1]), 1, 1}
}

// triangle returns the corners of the triangle representing a.
// It points along the velocity, 10 units long and 10 units wide.
func triangle(a boidswarm.Agent, dim int) [3][3]float32 {
	dir := mgl64.Vec3{1, 0, 0}
	if l := a.Vel.Len(); l > 0 {
		dir = a.Vel.Mul(1 / l)
	}
	side := mgl64.Vec3{-dir[1], dir[0], 0}
	if dim == 3 {
		side = dir.Cross(mgl64.Vec3{0, 0, 1})
		if side.Len() < 1e-6 {
			side = dir.Cross(mgl64.Vec3{0, 1, 0})
		}
		side = side.Normalize()
	}

	f := func(v mgl64.Vec3) [3]float32 {
		return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	return [3][3]float32{
		f(a.Pos.Add(side.Mul(5))),
		f(a.Pos.Sub(side.Mul(5))),
		f(a.Pos.Add(dir.Mul(10))),
	}
}

// newDisplay compiles shaders and initializes a display.
func newDisplay(swarmSize int) (*display, error) {
	d := &display{verts: make([]vertex, 0, 3*swarmSize)}

	var err error
	d.prog, err = makeProg([]shader{
		{"Vertex", vertexShader, gl.CreateShader(gl.VERTEX_SHADER)},
		{"Fragment", fragmentShader, gl.CreateShader(gl.FRAGMENT_SHADER)},
	})
	if err != nil {
		return nil, err
	}

	// uniform location cannot be specified in the shaders in OpenGL 3.3 core
	d.uni.proj = gl.GetUniformLocation(d.prog, gl.Str("proj\x00"))

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, cap(d.verts)*int(unsafe.Sizeof(vertex{})), nil, gl.STREAM_DRAW)

	// attribute locations are specified in the shaders with layout(location=n)
	const n = int32(unsafe.Sizeof(vertex{}))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, n, gl.PtrOffset(int(unsafe.Offsetof(vertex{}.Pos))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, n, gl.PtrOffset(int(unsafe.Offsetof(vertex{}.Color))))

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	return d, nil
}

const vertexShader = `
#version 330 core

uniform mat4 proj;

layout(location = 0) in vec3 pos;
layout(location = 1) in vec4 color;

out vec4 vcolor;

void main() {
	gl_Position = proj * vec4(pos, 1.0);
	vcolor = color;
}
`

const fragmentShader = `
#version 330 core

in vec4 vcolor;
out vec4 fcolor;

void main() {
	fcolor = vcolor;
}
`

// A shader wraps an OpenGL shader.
type shader struct {
	name   string
	src    string
	shader uint32
}

// makeProg builds OpenGL programs.
func makeProg(shaders []shader) (uint32, error) {
	var fail bool
	for _, s := range shaders {
		str, free := gl.Strs(s.src + "\x00")
		gl.ShaderSource(s.shader, 1, str, nil)
		free()
		gl.CompileShader(s.shader)
		var status int32
		gl.GetShaderiv(s.shader, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(s.shader, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(s.shader, n, &n, &log[0])
			fmt.Printf("### %s shader compilation error ###\n\n%s\n\n", s.name, gl.GoStr(&log[0]))
			fail = true
			gl.DeleteShader(s.shader)
		}
	}
	if fail {
		return 0, fmt.Errorf("boidswarm: GLSL errors")
	}
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s.shader)
	}
	gl.LinkProgram(prog)

	return prog, nil
}
