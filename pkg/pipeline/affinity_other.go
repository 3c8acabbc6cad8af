//go:build !linux

package pipeline

import "errors"

func pinToCPU(int) error {
	return errors.New("cpu affinity not supported on this platform")
}
