//go:build !tinygo && cgo

package hal

import "github.com/hajimehoshi/ebiten/v2"

// buttonKeys maps each console button to the desktop keys that press it.
var buttonKeys = [8][]ebiten.Key{
	{ebiten.KeyW, ebiten.KeyArrowUp},
	{ebiten.KeyA, ebiten.KeyArrowLeft},
	{ebiten.KeyS, ebiten.KeyArrowDown},
	{ebiten.KeyD, ebiten.KeyArrowRight},
	{ebiten.KeyI},
	{ebiten.KeyJ},
	{ebiten.KeyK},
	{ebiten.KeyL},
}

// poll samples the key state once per window update.
func (k *hostKeyboard) poll() {
	for i, keys := range buttonKeys {
		pressed := false
		for _, key := range keys {
			if ebiten.IsKeyPressed(key) {
				pressed = true
				break
			}
		}
		k.pressed[i].Store(pressed)
	}
}
