//go:build !linux

package device

import (
	"fmt"

	"github.com/diskbench/diskbench/internal/model"
)

// Details and AllDrives have no portable implementation here; non-Linux
// builds report ErrUnsupported the same way internal/ioback's
// UringBackend does on !linux.
var ErrUnsupported = fmt.Errorf("device: drive info unsupported on this platform")

func Details(path string) (model.DriveDetails, error) {
	return model.DriveDetails{}, ErrUnsupported
}

func AllDrives() ([]model.DriveDetails, error) {
	return nil, ErrUnsupported
}
