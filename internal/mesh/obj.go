package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"softraster/internal/mathutil"
)

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: %s: %w", path, err)
	}
	return m, nil
}

// ParseOBJ reads the geometry of an OBJ stream: v (with optional r g b),
// vn and f. Polygons are fan-triangulated. Texture coordinates, groups,
// materials and smoothing are accepted and ignored.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	p := objParser{m: &Mesh{}}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if !p.colored {
		p.m.Colors = nil
	}
	return p.m, nil
}

type objParser struct {
	m       *Mesh
	line    int
	colored bool
}

func (p *objParser) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", p.line, fmt.Sprintf(format, args...), ErrMalformed)
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		return p.parseVertex(fields[1:])
	case "vn":
		return p.parseNormal(fields[1:])
	case "f":
		return p.parseFace(fields[1:])
	}
	return nil
}

// v <x> <y> <z> [w] | v <x> <y> <z> <r> <g> <b>
func (p *objParser) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("vertex with %d coordinates", len(fields))
	}
	pos, err := p.floats(fields[:3])
	if err != nil {
		return err
	}
	c := mathutil.Vec4{1, 1, 1, 1}
	if len(fields) >= 6 {
		rgb, err := p.floats(fields[3:6])
		if err != nil {
			return err
		}
		c = mathutil.Vec4{rgb[0], rgb[1], rgb[2], 1}
		p.colored = true
	}
	p.m.Positions = append(p.m.Positions, pos)
	p.m.Colors = append(p.m.Colors, c)
	return nil
}

// vn <x> <y> <z>
func (p *objParser) parseNormal(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("normal with %d coordinates", len(fields))
	}
	n, err := p.floats(fields[:3])
	if err != nil {
		return err
	}
	p.m.Normals = append(p.m.Normals, n)
	return nil
}

// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("face with %d corners", len(fields))
	}
	vs := make([]int, len(fields))
	ns := make([]int, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		if len(parts) > 3 {
			return p.errorf("face corner %q", f)
		}
		v, err := p.index(parts[0], len(p.m.Positions), "position")
		if err != nil {
			return err
		}
		vs[i] = v
		if len(parts) > 1 && parts[1] != "" {
			if _, err := strconv.Atoi(parts[1]); err != nil {
				return p.errorf("texture index %q", parts[1])
			}
		}
		ns[i] = NoNormal
		if len(parts) == 3 {
			n, err := p.index(parts[2], len(p.m.Normals), "normal")
			if err != nil {
				return err
			}
			ns[i] = n
		}
	}
	for i := 1; i+1 < len(vs); i++ {
		p.m.Faces = append(p.m.Faces, Face{
			V: [3]int{vs[0], vs[i], vs[i+1]},
			N: [3]int{ns[0], ns[i], ns[i+1]},
		})
	}
	return nil
}

// index resolves a 1-based or negative (relative) OBJ index.
func (p *objParser) index(s string, count int, what string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errorf("%s index %q", what, s)
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += count
	default:
		return 0, p.errorf("%s index 0", what)
	}
	if v < 0 || v >= count {
		return 0, p.errorf("%s index %s out of range (%d defined)", what, s, count)
	}
	return v, nil
}

func (p *objParser) floats(fields []string) (mathutil.Vec3, error) {
	var out mathutil.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return out, p.errorf("number %q", f)
		}
		out[i] = v
	}
	return out, nil
}
