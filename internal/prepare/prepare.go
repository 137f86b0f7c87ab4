// Package prepare implements the file preparer (C8): opens the target
// path for direct, unbuffered I/O, discovers sector sizes, and grows the
// file to an exact, allocated (non-sparse) size via a fast fallocate path
// with a write-fill fallback. Grounded on the O_DIRECT open pattern in
// jolt's pkg/engine/{uring,libaio}.go and the Fallocate syscall usage in
// the harshavardhana-fio reference (other_examples).
package prepare

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/diskbench/diskbench/internal/model"
)

// DefaultSectorSize is the §4.1 fallback alignment when the OS does not
// expose a physical sector size (e.g. a plain file on a filesystem that
// does not report one via statx).
const DefaultSectorSize = 4096

// ErrFileTooSmall is returned by Prepare for a size <= 0. The
// block_size * queue_depth lower bound (§4.6) is checked by trial.New,
// since Prepare does not know the workload's block size or queue depth.
var ErrFileTooSmall = fmt.Errorf("prepare: file_size must be >= block_size * queue_depth and > 0")

// Prepare implements C8: open, discover sector size, and ensure the file
// is exactly spec.Size bytes with allocated (not sparse) contents.
func Prepare(spec model.PrepareSpec) (model.PrepareResult, error) {
	if spec.Size <= 0 {
		return model.PrepareResult{}, fmt.Errorf("%w: size=%d", ErrFileTooSmall, spec.Size)
	}

	logical, physical := sectorSizes(spec.Path)

	wasReused := false
	if spec.ReuseIfExists {
		if fi, err := os.Stat(spec.Path); err == nil && fi.Size() == spec.Size {
			wasReused = true
		}
	}

	flags := os.O_RDWR | os.O_CREATE
	f, err := os.OpenFile(spec.Path, flags, 0644)
	if err != nil {
		return model.PrepareResult{}, fmt.Errorf("prepare: open %s: %w", spec.Path, err)
	}
	defer f.Close()

	usedFastPath := false
	if wasReused {
		// Done: existing file already matches target size.
	} else {
		// Shrink an existing larger file; neither fallocate nor
		// write-fill ever reduces the size.
		if err := f.Truncate(spec.Size); err != nil {
			return model.PrepareResult{}, fmt.Errorf("prepare: truncate %s: %w", spec.Path, err)
		}
		usedFastPath, err = fastPreallocate(f, spec.Size)
		if err != nil {
			if err := writeFill(f, spec); err != nil {
				return model.PrepareResult{}, fmt.Errorf("prepare: write-fill fallback: %w", err)
			}
		}
	}

	fi, err := f.Stat()
	if err != nil {
		return model.PrepareResult{}, fmt.Errorf("prepare: stat after allocate: %w", err)
	}
	if fi.Size() != spec.Size {
		return model.PrepareResult{}, fmt.Errorf("prepare: final size %d != requested %d", fi.Size(), spec.Size)
	}

	return model.PrepareResult{
		Path:               spec.Path,
		FinalSize:          fi.Size(),
		LogicalSectorSize:  logical,
		PhysicalSectorSize: physical,
		UsedFastPath:       usedFastPath,
		WasReused:          wasReused,
	}, nil
}

// fastPreallocate marks the file's range valid without writing data, via
// fallocate(2). This requires filesystem support (ext4/xfs do; some
// network/overlay filesystems do not) and is not privilege-gated on
// Linux the way sparse-file-to-allocated conversion is on some other
// platforms, but it can still fail — callers fall back to writeFill.
func fastPreallocate(f *os.File, size int64) (bool, error) {
	const fallocFLKeepSize = 0 // grow the file, do not just reserve space past EOF
	err := unix.Fallocate(int(f.Fd()), fallocFLKeepSize, 0, size)
	if err != nil {
		return false, fmt.Errorf("fallocate: %w", err)
	}
	return true, nil
}

// writeFill iterates 1 MiB writes (the last one shorter if the size is
// not a multiple) of the fill pattern (or zero) from offset 0 to the
// target size, ignoring slowdowns. Used
// when fast-path preallocation is unavailable (§4.8 step 3).
func writeFill(f *os.File, spec model.PrepareSpec) error {
	const chunk = 1 << 20 // 1 MiB write-fill granularity
	buf := make([]byte, chunk)
	if spec.UseFillPattern {
		for i := range buf {
			buf[i] = spec.FillPattern
		}
	}

	var written int64
	for written < spec.Size {
		n := int64(chunk)
		if remaining := spec.Size - written; remaining < n {
			n = remaining
		}
		if _, err := f.WriteAt(buf[:n], written); err != nil {
			return fmt.Errorf("write-fill at offset %d: %w", written, err)
		}
		written += n
	}
	return f.Sync()
}

// sectorSizes returns {logical, physical} sector sizes for the
// filesystem backing path, falling back to DefaultSectorSize when the
// platform does not expose statx-style block size info. This
// implementation (unix.Stat's st_blksize + a conservative fixed
// fallback) is
// intentionally simple: statx's STATX_BLKSIZE is not wrapped uniformly
// across filesystems/platforms in golang.org/x/sys, and the difference
// between a filesystem's reported block size and the drive's actual
// physical sector size is not observable from user space without
// vendor-specific ioctls outside this engine's scope.
func sectorSizes(path string) (logical, physical int) {
	return SectorSizes(path)
}

// SectorSizes is the exported form of the §4.1 sector-size probe, usable
// by callers (e.g. the public facade's SectorSize) that want an answer
// without going through the full Prepare call.
func SectorSizes(path string) (logical, physical int) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err == nil && st.Blksize > 0 {
		return int(st.Blksize), int(st.Blksize)
	}
	return DefaultSectorSize, DefaultSectorSize
}

// OpenDirect opens path for direct, unbuffered, random-access read/write
// I/O shareable across goroutines issuing independent offsets (§4.8,
// §5 "no mutex required" — the platform serializes per-handle
// submissions). direct=false is accepted for filesystems/tests where
// O_DIRECT is unsupported (e.g. tmpfs).
func OpenDirect(path string, direct bool) (*os.File, error) {
	flags := os.O_RDWR
	if direct {
		flags |= syscall.O_DIRECT
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("prepare: open direct %s: %w", path, err)
	}
	return f, nil
}
