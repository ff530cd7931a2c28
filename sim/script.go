package sim

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/hopper/controller"
)

// ScriptStep holds a key state for a number of frames.
type ScriptStep struct {
	Frames int      `yaml:"frames"`
	Keys   []string `yaml:"keys"`    // forward, backward, left, right, jump
	YawDeg *float64 `yaml:"yaw_deg"` // optional camera yaw for the step
}

// Script drives headless runs with recorded input.
type Script struct {
	Steps []ScriptStep `yaml:"steps"`
	Loop  bool         `yaml:"loop"`

	keys  []controller.Keys
	total int
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	sc := &Script{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := sc.compile(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Script) compile() error {
	sc.keys = make([]controller.Keys, len(sc.Steps))
	sc.total = 0
	for i, st := range sc.Steps {
		if st.Frames < 1 {
			return fmt.Errorf("script step %d: frames must be positive, got %d", i, st.Frames)
		}
		for _, name := range st.Keys {
			switch strings.ToLower(name) {
			case "forward":
				sc.keys[i].Forward = true
			case "backward":
				sc.keys[i].Backward = true
			case "left":
				sc.keys[i].Left = true
			case "right":
				sc.keys[i].Right = true
			case "jump":
				sc.keys[i].Jump = true
			default:
				return fmt.Errorf("script step %d: unknown key %q", i, name)
			}
		}
		sc.total += st.Frames
	}
	return nil
}

// Frames returns the length of one pass through the script.
func (sc *Script) Frames() int {
	return sc.total
}

// At returns the keys and optional yaw in radians for frame. ok is false once
// a non-looping script has run out.
func (sc *Script) At(frame int) (keys controller.Keys, yaw float64, hasYaw, ok bool) {
	if sc.total == 0 || frame < 0 {
		return controller.Keys{}, 0, false, false
	}
	if frame >= sc.total {
		if !sc.Loop {
			return controller.Keys{}, 0, false, false
		}
		frame %= sc.total
	}
	for i, st := range sc.Steps {
		if frame < st.Frames {
			if st.YawDeg != nil {
				return sc.keys[i], *st.YawDeg * math.Pi / 180, true, true
			}
			return sc.keys[i], 0, false, true
		}
		frame -= st.Frames
	}
	return controller.Keys{}, 0, false, false
}
