//go:build !linux && !windows

package priority

func elevate() error {
	return ErrUnsupported
}
