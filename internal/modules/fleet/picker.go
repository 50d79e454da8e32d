// README: Injectable random selection so assignment can be made deterministic in tests.
package fleet

import "math/rand/v2"

// Picker returns a uniformly chosen index in [0, n).
type Picker interface {
	Intn(n int) int
}

type randPicker struct{}

func (randPicker) Intn(n int) int {
	return rand.IntN(n)
}

// RandomPicker is the production Picker.
func RandomPicker() Picker {
	return randPicker{}
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

func (f PickerFunc) Intn(n int) int {
	return f(n)
}
