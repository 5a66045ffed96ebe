package mscn

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mirielengine/mscn/scene"
)

func f32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func vec3(v mgl32.Vec3) string {
	return f32(v[0]) + " " + f32(v[1]) + " " + f32(v[2])
}

// names are written as bare words, so they cannot carry whitespace or be braces
func checkName(kind, name string) error {
	if name == "{" || name == "}" || strings.ContainsAny(name, " \t\r\n") {
		return errors.Errorf("%s %q cannot be stored in a scene file", kind, name)
	}
	return nil
}

func Encode(out io.Writer, s *scene.Scene) error {
	var werr error
	w := func(format string, args ...interface{}) {
		if werr == nil {
			_, werr = fmt.Fprintf(out, format, args...)
		}
	}

	for idx, o := range s.Objects() {
		if err := checkName("object path", o.Path); err != nil {
			return err
		}
		w("%s {\n", o.Path)
		if o.VertexShader != "" && o.FragmentShader != "" {
			if err := checkShaders(o.VertexShader, o.FragmentShader); err != nil {
				return errors.Wrapf(err, "%s", o.Path)
			}
			w("\t%s %s\n", o.VertexShader, o.FragmentShader)
		}
		for _, inst := range s.Instances(idx) {
			w("\t{\n")
			if inst.VertexShader != "" && inst.VertexShader != o.VertexShader {
				if err := checkName("vertex shader", inst.VertexShader); err != nil {
					return err
				}
				w("\t\tv %s\n", inst.VertexShader)
			}
			if inst.FragmentShader != "" && inst.FragmentShader != o.FragmentShader {
				if err := checkName("fragment shader", inst.FragmentShader); err != nil {
					return err
				}
				w("\t\tf %s\n", inst.FragmentShader)
			}
			if inst.Translation != (mgl32.Vec3{}) {
				w("\t\tt %s\n", vec3(inst.Translation))
			}
			if inst.Rotation != (mgl32.Vec3{}) {
				w("\t\tr %s\n", vec3(inst.Rotation))
			}
			if inst.Scale != (mgl32.Vec3{1, 1, 1}) {
				w("\t\ts %s\n", vec3(inst.Scale))
			}
			w("\t}\n")
		}
		w("}\n")
	}

	if len(s.DirectionalLights)+len(s.PointLights) != 0 {
		w("l {\n")
		for _, l := range s.DirectionalLights {
			w("\t{\n\t\td %s\n\t\tc %s\n\t}\n", vec3(l.Value), vec3(l.Color))
		}
		for _, l := range s.PointLights {
			w("\t{\n\t\tp %s\n\t\tc %s\n\t}\n", vec3(l.Value), vec3(l.Color))
		}
		w("}\n")
	}

	if len(s.Particles) != 0 {
		w("p {\n")
		for i, sp := range s.Particles {
			if sp.VertexShader == "" || sp.FragmentShader == "" {
				return errors.Errorf("particle spawner %d has no shaders", i)
			}
			if err := checkShaders(sp.VertexShader, sp.FragmentShader); err != nil {
				return errors.Wrapf(err, "particle spawner %d", i)
			}
			w("\t{\n\t\t%s %s\n\t\tp %s\n\t\tc %s\n\t}\n", sp.VertexShader, sp.FragmentShader, vec3(sp.Position), vec3(sp.Color))
		}
		w("}\n")
	}

	w("c %s %s\n", vec3(s.Camera.Position), vec3(s.Camera.Target))
	return werr
}

func checkShaders(vert, frag string) error {
	if err := checkName("vertex shader", vert); err != nil {
		return err
	}
	return checkName("fragment shader", frag)
}

// EncodeFile renders the whole scene first so a failed encode never
// truncates an existing file.
func EncodeFile(path string, s *scene.Scene) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0666); err != nil {
		return errors.Wrapf(scene.ErrFileAccess, "%s: %v", path, err)
	}
	return nil
}
