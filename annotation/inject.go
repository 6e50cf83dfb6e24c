package annotation

import (
	"fmt"

	"github.com/wippyai/wasm-annotate/errors"
	"github.com/wippyai/wasm-annotate/wasm"
)

// Inject returns a new binary with custom placed directly after the
// module's 8-byte preamble. Neither input is modified and the module body
// is not inspected.
func Inject(custom, module []byte) ([]byte, error) {
	if len(module) < wasm.PreambleSize {
		return nil, errors.InvalidData(errors.PhaseInject, nil,
			fmt.Sprintf("module is %d bytes, shorter than the %d-byte preamble", len(module), wasm.PreambleSize))
	}

	out := make([]byte, 0, len(module)+len(custom))
	out = append(out, module[:wasm.PreambleSize]...)
	out = append(out, custom...)
	out = append(out, module[wasm.PreambleSize:]...)
	return out, nil
}

// EncodeAndInject encodes a and injects the result into module.
func EncodeAndInject(a *Annotations, module []byte) ([]byte, error) {
	blob, err := Encode(a)
	if err != nil {
		return nil, err
	}
	return Inject(blob, module)
}
