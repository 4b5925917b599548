package acllite

import "testing"

func TestCPUCoreMask(t *testing.T) {

	if got := CPUCoreMask([]int{0, 1, 2, 3}); got != 0b00001111 {
		t.Errorf("CPUCoreMask = %#b; want 0b00001111", got)
	}

	if got := CPUCoreMask([]int{4, 7}); got != 0b10010000 {
		t.Errorf("CPUCoreMask = %#b; want 0b10010000", got)
	}

	if got := CPUCoreMask(nil); got != 0 {
		t.Errorf("CPUCoreMask = %#b; want 0", got)
	}
}

func TestSetCPUAffinityByPlatformUnknown(t *testing.T) {

	if err := SetCPUAffinityByPlatform("rk3588", AllCores); err == nil {
		t.Error("expected error for unknown platform, got nil")
	}

	if err := SetCPUAffinityByPlatform("a200dk", CoreType(9)); err == nil {
		t.Error("expected error for unknown core type, got nil")
	}
}
