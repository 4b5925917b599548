package acllite

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"
)

const (
	// A200DKCtrlCores is the cpu affinity mask of the taishan control cores
	// 0-3 on the Atlas 200 DK
	A200DKCtrlCores = uintptr(0b00001111)
	// A200DKAICores is the cpu affinity mask of the taishan AI cpu cores 4-7
	// on the Atlas 200 DK
	A200DKAICores = uintptr(0b11110000)
	// A200DKAllCores is the cpu affinity mask for all cores 0-7 on the
	// Atlas 200 DK
	A200DKAllCores = uintptr(0b11111111)

	// A200IDKA2AllCores is the cpu affinity mask of all cortex A55 cores 0-3
	// on the Atlas 200I DK A2
	A200IDKA2AllCores = uintptr(0b00001111)
)

// CoreType specifies the CPU core group used for host side tensor feed and
// post processing work
type CoreType int

const (
	CtrlCores CoreType = 0
	AICores   CoreType = 1
	AllCores  CoreType = 2
)

// coreMaskList defines a list of CPU core masks for lookup by key
var coreMaskList = map[string]map[CoreType]uintptr{
	"a200dk": {
		CtrlCores: A200DKCtrlCores,
		AICores:   A200DKAICores,
		AllCores:  A200DKAllCores,
	},
	"a200idka2": {
		CtrlCores: A200IDKA2AllCores,
		AICores:   A200IDKA2AllCores,
		AllCores:  A200IDKA2AllCores,
	},
}

// SetCPUAffinity sets the CPU Affinity mask of the program to run on the
// specified cores
func SetCPUAffinity(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers
// as a slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// SetCPUAffinityByPlatform sets the CPU Affinity mask of the program to run
// on the specified CPU cores based on the given platform string of
// a200dk|a200idka2
func SetCPUAffinityByPlatform(platform string, ct CoreType) error {

	platform = strings.TrimSpace(platform)
	platform = strings.ToLower(platform)

	masks, ok := coreMaskList[platform]

	if !ok {
		return fmt.Errorf("unknown platform %q", platform)
	}

	useCores, ok := masks[ct]

	if !ok {
		return fmt.Errorf("unknown core type %d for platform %q", ct, platform)
	}

	return SetCPUAffinity(useCores)
}
