//go:build linux

// Package device implements the read-only drive-info query (D4):
// capacity and free space for a path's backing filesystem.
// Grounded on the Stat_t.Blksize discovery in internal/prepare (itself
// grounded on jolt's OpenFileDirectIO-adjacent sector probing) and
// extended here to unix.Statfs for capacity, following the same
// golang.org/x/sys/unix usage the pack leans on throughout.
package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/diskbench/diskbench/internal/model"
)

// Details reports total and free capacity for the filesystem backing
// path; sector sizes are not reported, and BusType is always "unknown".
// path need not exist yet (its parent
// directory is statted instead, matching prepare's reuse-or-create
// contract).
func Details(path string) (model.DriveDetails, error) {
	dir := filepath.Dir(path)

	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return model.DriveDetails{}, fmt.Errorf("device: statfs %s: %w", dir, err)
	}

	return model.DriveDetails{
		Path:       path,
		VolumeLabel: dir,
		BusType:    "unknown",
		TotalBytes: uint64(int64(st.Blocks) * int64(st.Bsize)),
		FreeBytes:  uint64(int64(st.Bavail) * int64(st.Bsize)),
	}, nil
}

// AllDrives enumerates the mounted filesystems from /proc/mounts,
// reporting capacity for each local mount point. Pseudo filesystems
// (proc, sysfs, cgroup, ...) are skipped since they cannot host a
// benchmark file usefully.
func AllDrives() ([]model.DriveDetails, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("device: read /proc/mounts: %w", err)
	}

	var drives []model.DriveDetails
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		if skipFSType[fsType] {
			continue
		}
		d, err := Details(filepath.Join(mountPoint, "probe"))
		if err != nil {
			continue
		}
		d.Path = mountPoint
		d.VolumeLabel = mountPoint
		drives = append(drives, d)
	}
	return drives, nil
}

var skipFSType = map[string]bool{
	"proc": true, "sysfs": true, "cgroup": true, "cgroup2": true,
	"devtmpfs": true, "devpts": true, "tmpfs": true, "overlay": true,
	"squashfs": true, "debugfs": true, "tracefs": true, "mqueue": true,
	"securityfs": true, "configfs": true, "pstore": true, "bpf": true,
	"autofs": true, "hugetlbfs": true,
}
