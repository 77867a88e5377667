package emulator

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// findROMs recursively collects .gb files under dir.
func findROMs(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".gb") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// runBlargg steps romPath until its serial output contains "Passed" or
// "Failed", or maxCycles elapses.
func runBlargg(t *testing.T, romPath string, maxCycles uint64) {
	t.Helper()
	rom, err := os.ReadFile(romPath)
	if err != nil {
		t.Fatalf("read ROM: %v", err)
	}
	m := New(Config{})
	if err := m.LoadCartridge(rom); err != nil {
		t.Fatalf("load ROM: %v", err)
	}
	m.SetPostBootState()
	m.Start()

	for m.CycleCount() < maxCycles {
		m.Step()
		out := m.Serial().OutputBuffer()
		if strings.Contains(out, "Passed") {
			return
		}
		if strings.Contains(out, "Failed") {
			t.Fatalf("%s reported failure via serial:\n%s", filepath.Base(romPath), out)
		}
	}
	t.Fatalf("timeout waiting for serial 'Passed' in %s", filepath.Base(romPath))
}

// TestBlargg scans testroms/blargg (or BLARGG_DIR) for .gb images and runs
// each one to completion. The ROMs themselves are proprietary test
// binaries and are never vendored into the module, so this is opt-in and
// skips by default.
func TestBlargg(t *testing.T) {
	if os.Getenv("RUN_BLARGG") == "" {
		t.Skip("set RUN_BLARGG=1 and place .gb ROMs under testroms/blargg or set BLARGG_DIR to run")
	}

	base := os.Getenv("BLARGG_DIR")
	if base == "" {
		base = filepath.Join(".", "testroms", "blargg")
	}
	if _, err := os.Stat(base); err != nil {
		t.Skipf("blargg ROM dir missing: %s", base)
	}

	roms, err := findROMs(base)
	if err != nil {
		t.Fatalf("scan ROMs: %v", err)
	}
	if len(roms) == 0 {
		t.Skipf("no ROMs found in %s", base)
	}

	maxCycles := uint64(150_000_000)
	if v := os.Getenv("BLARGG_MAX_CYCLES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			maxCycles = n
		}
	}

	for _, rom := range roms {
		rom := rom
		name := strings.TrimSuffix(filepath.Base(rom), filepath.Ext(rom))
		t.Run(name, func(t *testing.T) { runBlargg(t, rom, maxCycles) })
	}
}
