// Package script runs scripted camera shots for cinematic camera mode.
// A shot is a tengo script exposing update(cam, t); the host plays it and
// the resulting pans broadcast to guests through the normal camera sync.
package script

import (
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Target is the camera surface a shot drives.
type Target interface {
	Pan(x, y, scale float64, durationMs int)
	SetRotation(radians float64)
}

const shotDispatchScript = `
if __phase == "update" {
	update(__cam, __t)
}
`

// Shot is a compiled camera script. The script defines update(cam, t)
// where t is seconds since the shot started; cam carries pan_to,
// set_rotation, and done. An optional global duration_sec caps playback.
type Shot struct {
	compiled *tengo.Compiled
	duration float64
	done     bool
}

// Compile compiles shot source. The script's top level runs once here so
// globals like duration_sec resolve before playback.
func Compile(src []byte) (*Shot, error) {
	s := tengo.NewScript(append(append([]byte{}, src...), []byte("\n"+shotDispatchScript)...))
	_ = s.Add("__phase", "")
	_ = s.Add("__t", 0.0)
	_ = s.Add("__cam", map[string]any{})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile shot: %w", err)
	}

	shot := &Shot{compiled: compiled}
	if err := shot.run("init", 0, nil); err != nil {
		return nil, fmt.Errorf("init shot: %w", err)
	}
	if compiled.IsDefined("duration_sec") {
		if f, ok := compiled.Get("duration_sec").Value().(float64); ok && f > 0 {
			shot.duration = f
		} else if n, ok := compiled.Get("duration_sec").Value().(int64); ok && n > 0 {
			shot.duration = float64(n)
		}
	}
	return shot, nil
}

// Step advances the shot to elapsed time and applies its camera calls to
// the target. It reports whether the shot has finished.
func (s *Shot) Step(target Target, elapsed time.Duration) (bool, error) {
	if s == nil || s.compiled == nil || s.done {
		return true, nil
	}
	t := elapsed.Seconds()
	if s.duration > 0 && t >= s.duration {
		s.done = true
		return true, nil
	}
	if err := s.run("update", t, target); err != nil {
		s.done = true
		return true, err
	}
	return s.done, nil
}

func (s *Shot) run(phase string, t float64, target Target) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__t", t); err != nil {
		return err
	}
	if err := s.compiled.Set("__cam", s.engine(target)); err != nil {
		return err
	}
	return s.compiled.Run()
}

func (s *Shot) engine(target Target) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["pan_to"] = &tengo.UserFunction{Name: "pan_to", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 2 {
			return tengo.FalseValue, nil
		}
		x := objectAsFloat(args[0])
		y := objectAsFloat(args[1])
		scale := 0.0
		if len(args) > 2 {
			scale = objectAsFloat(args[2])
		}
		ms := 0
		if len(args) > 3 {
			ms = int(objectAsFloat(args[3]))
		}
		target.Pan(x, y, scale, ms)
		return tengo.TrueValue, nil
	}}

	values["set_rotation"] = &tengo.UserFunction{Name: "set_rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if target == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		target.SetRotation(objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["done"] = &tengo.UserFunction{Name: "done", Value: func(args ...tengo.Object) (tengo.Object, error) {
		s.done = true
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}
