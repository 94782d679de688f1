//go:build unix

package reorganizer

import "golang.org/x/sys/unix"

// sameDevice reports whether both paths live on the same filesystem, which is
// what makes the final directory rename atomic.
func sameDevice(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, err
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, err
	}
	return sa.Dev == sb.Dev, nil
}
