// Package pipeline feeds meshes through a shader's vertex stage and the
// rasterizer using a pool of worker goroutines.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"softraster/internal/mathutil"
	"softraster/internal/mesh"
	"softraster/internal/raster"
	"softraster/internal/shader"
)

// Topology selects how mesh faces are turned into primitives.
type Topology int

const (
	Triangles Topology = iota
	Lines              // the three edges of every face
	Points             // the three corners of every face
)

var topologyNames = [...]string{"triangles", "lines", "points"}

func (t Topology) String() string {
	if t >= 0 && int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// ParseTopology accepts the names printed by String.
func ParseTopology(s string) (Topology, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range topologyNames {
		if s == n {
			return Topology(i), nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown topology %q: %w", s, raster.ErrInvalidArgument)
}

// DefaultColor is the vertex color for meshes without a color table.
var DefaultColor = mathutil.Vec4{0.63, 0.63, 0.67, 1}

// Stats summarizes one Draw call.
type Stats struct {
	Faces      int64
	Primitives int64 // rasterizer calls
	Errors     int64
	Elapsed    time.Duration
}

// Renderer draws meshes into one target with one shader.
type Renderer struct {
	target  raster.Target
	shader  raster.Shader
	rast    *raster.Rasterizer
	workers int

	// Color replaces DefaultColor when set.
	Color *mathutil.Vec4
}

// New returns a renderer. workers <= 0 means runtime.NumCPU().
func New(target raster.Target, sh raster.Shader, workers int) *Renderer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Renderer{
		target:  target,
		shader:  sh,
		rast:    raster.New(target, sh),
		workers: workers,
	}
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.workers }

// Draw runs every face of m through the vertex stage, the viewport
// transform and the rasterizer. Faces are handed to the workers in order but
// may complete in any order; the depth test makes the result independent of
// that order. Cancellation is observed between faces. Line errors are
// counted and the first one is returned once all faces are done.
func (r *Renderer) Draw(ctx context.Context, m *mesh.Mesh, topo Topology) (Stats, error) {
	if err := m.Validate(); err != nil {
		return Stats{}, fmt.Errorf("pipeline: draw: %w", err)
	}
	if topo < Triangles || topo > Points {
		return Stats{}, fmt.Errorf("pipeline: draw: %v: %w", topo, raster.ErrInvalidArgument)
	}

	var (
		stats    Stats
		faces    atomic.Int64
		prims    atomic.Int64
		failures atomic.Int64
		errOnce  sync.Once
		firstErr error
	)
	start := time.Now()
	total := len(m.Faces)
	log := Logger()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				log.Debug("pipeline: progress", "faces", faces.Load(), "total", total)
			}
		}
	}()

	// Worker pool
	faceChan := make(chan int, r.workers*2)
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range faceChan {
				if ctx.Err() != nil {
					continue
				}
				n, err := r.drawFace(m, i, topo)
				prims.Add(n)
				faces.Add(1)
				if err != nil {
					failures.Add(1)
					errOnce.Do(func() { firstErr = fmt.Errorf("pipeline: face %d: %w", i, err) })
				}
			}
		}()
	}

	// Send work
send:
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			break send
		case faceChan <- i:
		}
	}
	close(faceChan)

	wg.Wait()
	close(done)

	stats.Faces = faces.Load()
	stats.Primitives = prims.Load()
	stats.Errors = failures.Load()
	stats.Elapsed = time.Since(start)

	log.Debug("pipeline: draw",
		"topology", topo.String(),
		"faces", stats.Faces,
		"primitives", stats.Primitives,
		"errors", stats.Errors,
		"workers", r.workers,
		"elapsed", stats.Elapsed)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if firstErr != nil {
		log.Warn("pipeline: primitives rejected", "count", stats.Errors, "first", firstErr)
	}
	return stats, firstErr
}

// drawFace rasterizes face i and reports how many primitives it issued.
func (r *Renderer) drawFace(m *mesh.Mesh, i int, topo Topology) (int64, error) {
	var tri raster.Triangle
	for k := 0; k < 3; k++ {
		tri[k] = r.viewport(r.shader.Vertex(r.vertex(m, i, k)))
	}

	switch topo {
	case Lines:
		var firstErr error
		for k := 0; k < 3; k++ {
			if err := r.rast.Line(tri[k], tri[(k+1)%3]); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return 3, firstErr
	case Points:
		r.rast.Points(tri)
		return 3, nil
	default:
		r.rast.Triangle(tri)
		return 1, nil
	}
}

// vertex assembles the model-space vertex for corner k of face i.
func (r *Renderer) vertex(m *mesh.Mesh, i, k int) raster.Vertex {
	vi := m.Faces[i].V[k]
	p := m.Positions[vi]

	c := DefaultColor
	if r.Color != nil {
		c = *r.Color
	}
	if m.Colors != nil {
		c = m.Colors[vi]
	}

	attrs := make([]mathutil.Vec4, shader.NumAttrs)
	attrs[shader.AttrColor] = c
	attrs[shader.AttrNormal] = m.Normal(i, k).Vec4(0)
	attrs[shader.AttrPosition] = p.Vec4(1)
	return raster.Vertex{X: p[0], Y: p[1], Z: p[2], Attrs: attrs}
}

// viewport maps normalized device coordinates to pixels. The square
// [-1,1]² lands centered in the target with side min(width, height); Y is
// flipped so +Y is up, and depth is (1-z)/2 so +Z (toward the viewer) is
// closer.
func (r *Renderer) viewport(v raster.Vertex) raster.Vertex {
	w, h := r.target.Size()
	side := float64(min(w, h))
	v.X = float64(w)/2 + v.X*side/2
	v.Y = float64(h)/2 - v.Y*side/2
	v.Z = (1 - v.Z) / 2
	return v
}
