package sysinfo

import "testing"

const sampleLscpu = `Architecture:             x86_64
  CPU op-mode(s):         32-bit, 64-bit
CPU(s):                   16
  On-line CPU(s) list:    0-15
Model name:               Intel(R) Xeon(R) Gold 6348 CPU @ 2.60GHz
Caches (sum of all):
  L1d cache:              768 KiB (16 instances)
  L1i cache:              512 KiB (16 instances)
  L2 cache:               20 MiB (16 instances)
  L3 cache:               42 MiB (1 instance)
`

func TestExtractAllFields(t *testing.T) {
	info := Extract(sampleLscpu)

	if info.CPUModel != "Intel(R) Xeon(R) Gold 6348 CPU @ 2.60GHz" {
		t.Fatalf("unexpected cpu model: %q", info.CPUModel)
	}
	if info.CPUCount != 16 {
		t.Fatalf("expected cpu count 16, got %d", info.CPUCount)
	}
	if info.Architecture != "x86_64" {
		t.Fatalf("unexpected architecture: %q", info.Architecture)
	}
	if info.L1DCache != "768 KiB (16 instances)" {
		t.Fatalf("unexpected l1d cache: %q", info.L1DCache)
	}
	if info.L1ICache != "512 KiB (16 instances)" {
		t.Fatalf("unexpected l1i cache: %q", info.L1ICache)
	}
	if info.L2Cache != "20 MiB (16 instances)" {
		t.Fatalf("unexpected l2 cache: %q", info.L2Cache)
	}
	if info.L3Cache != "42 MiB (1 instance)" {
		t.Fatalf("unexpected l3 cache: %q", info.L3Cache)
	}
}

func TestExtractFieldsAreIndependentlyOptional(t *testing.T) {
	info := Extract("Architecture:   aarch64\n")

	if info.Architecture != "aarch64" {
		t.Fatalf("unexpected architecture: %q", info.Architecture)
	}
	if info.CPUModel != "" || info.CPUCount != 0 || info.L3Cache != "" {
		t.Fatalf("expected remaining fields empty, got %+v", info)
	}
}

func TestExtractEmptyText(t *testing.T) {
	info := Extract("")
	if info != (SystemInfo{}) {
		t.Fatalf("expected zero-value info, got %+v", info)
	}
}
