package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
disks:
  - name: d0
    path: /mnt/d0
  - name: d1
    path: /mnt/d1
parity: /mnt/parity/parity
level: 1
block_size: 262144
hash_seed: "` + strings.Repeat("ab", 32) + `"
autosave: 1073741824
count_quota:
  num: 1
  den: 12
recency_guard_days: 10
`

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "array.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	a, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(a.Disks) != 2 {
		t.Fatalf("len(Disks) = %d, want 2", len(a.Disks))
	}
	if a.BlockSize != 262144 {
		t.Fatalf("BlockSize = %d, want 262144", a.BlockSize)
	}
	seed, err := a.Seed()
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if seed[0] != 0xab {
		t.Fatalf("Seed()[0] = %x, want ab", seed[0])
	}
}

func TestLoadRejectsBadBlockSize(t *testing.T) {
	body := strings.Replace(validYAML, "block_size: 262144", "block_size: 1000", 1)
	if _, err := Load(writeTemp(t, body)); err == nil {
		t.Fatalf("expected an error for a non-multiple-of-4096 block size")
	}
}

func TestLoadRequiresQArityAtLevelTwo(t *testing.T) {
	body := strings.Replace(validYAML, "level: 1", "level: 2", 1)
	if _, err := Load(writeTemp(t, body)); err == nil {
		t.Fatalf("expected an error when level 2 has no qarity path")
	}
}

func TestLoadDefaultsCountQuota(t *testing.T) {
	body := strings.Replace(validYAML, "count_quota:\n  num: 1\n  den: 12\n", "", 1)
	a, err := Load(writeTemp(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.CountQuota.Den != 12 || a.CountQuota.Num != 1 {
		t.Fatalf("CountQuota = %+v, want default 1/12", a.CountQuota)
	}
}
