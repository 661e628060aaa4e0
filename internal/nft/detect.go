package nft

import (
	"fmt"
	"os/exec"
)

// Detect locates the engine binary on PATH. Returns ErrEngineMissing
// when it is not installed; callers decide whether to offer setup.
func Detect(engine string) (string, error) {
	if engine == "" {
		engine = "nft"
	}
	path, err := exec.LookPath(engine)
	if err != nil {
		return "", fmt.Errorf("%w: %q not on PATH", ErrEngineMissing, engine)
	}
	return path, nil
}
