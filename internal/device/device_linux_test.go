//go:build linux

package device

import "testing"

func TestDetailsReportsNonZeroCapacity(t *testing.T) {
	d, err := Details(t.TempDir() + "/probe")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if d.TotalBytes <= 0 {
		t.Fatalf("expected positive TotalBytes, got %d", d.TotalBytes)
	}
	if d.FreeBytes < 0 {
		t.Fatalf("expected non-negative FreeBytes, got %d", d.FreeBytes)
	}
}

func TestAllDrivesReturnsAtLeastRoot(t *testing.T) {
	drives, err := AllDrives()
	if err != nil {
		t.Fatalf("AllDrives: %v", err)
	}
	if len(drives) == 0 {
		t.Fatal("expected at least one mounted filesystem")
	}
}
