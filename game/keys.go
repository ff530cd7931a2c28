package game

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
)

var namedKeys = map[string]int32{
	"SPACE":       rl.KeySpace,
	"ENTER":       rl.KeyEnter,
	"TAB":         rl.KeyTab,
	"UP":          rl.KeyUp,
	"DOWN":        rl.KeyDown,
	"LEFT":        rl.KeyLeft,
	"RIGHT":       rl.KeyRight,
	"LEFT_SHIFT":  rl.KeyLeftShift,
	"RIGHT_SHIFT": rl.KeyRightShift,
	"LEFT_CTRL":   rl.KeyLeftControl,
	"RIGHT_CTRL":  rl.KeyRightControl,
}

// keyCode resolves a binding name: a single letter or digit, or one of namedKeys.
func keyCode(name string) (int32, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if len(n) == 1 {
		c := n[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			// raylib key codes for letters and digits are their ASCII values
			return int32(c), nil
		}
	}
	if k, ok := namedKeys[n]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// keyBindings maps the movement actions to raylib key codes.
type keyBindings struct {
	forward, backward, left, right, jump int32
}

func newKeyBindings(in config.InputConfig) (keyBindings, error) {
	var kb keyBindings
	for _, b := range []struct {
		action string
		name   string
		dst    *int32
	}{
		{"forward", in.Forward, &kb.forward},
		{"backward", in.Backward, &kb.backward},
		{"left", in.Left, &kb.left},
		{"right", in.Right, &kb.right},
		{"jump", in.Jump, &kb.jump},
	} {
		code, err := keyCode(b.name)
		if err != nil {
			return keyBindings{}, fmt.Errorf("input.%s: %w", b.action, err)
		}
		*b.dst = code
	}
	return kb, nil
}

// read samples the held state of every bound key.
func (kb keyBindings) read() controller.Keys {
	return controller.Keys{
		Forward:  rl.IsKeyDown(kb.forward),
		Backward: rl.IsKeyDown(kb.backward),
		Left:     rl.IsKeyDown(kb.left),
		Right:    rl.IsKeyDown(kb.right),
		Jump:     rl.IsKeyDown(kb.jump),
	}
}
