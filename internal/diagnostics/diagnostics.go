// Package diagnostics runs the one-shot startup preflight and samples
// ongoing host resource usage for display in the dev console.
package diagnostics

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	gopnet "github.com/shirou/gopsutil/v3/net"
)

// Preflight checks that this host can actually drive a robot: the log
// directory is writable, a UDP socket can be opened, and at least one
// non-loopback network interface exists. It returns the first failure
// found, reported as an I/O fatal startup error (§7).
func Preflight(logDir string) error {
	if err := checkLogDirWritable(logDir); err != nil {
		return err
	}
	if err := checkUDPBindable(); err != nil {
		return err
	}
	if err := checkNetworkInterfacePresent(); err != nil {
		return err
	}
	return nil
}

func checkLogDirWritable(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("diagnostics: log directory %s not creatable: %w", logDir, err)
	}
	probe := filepath.Join(logDir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("diagnostics: log directory %s not writable: %w", logDir, err)
	}
	_ = os.Remove(probe)
	return nil
}

func checkUDPBindable() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("diagnostics: cannot open a UDP socket: %w", err)
	}
	return conn.Close()
}

func checkNetworkInterfacePresent() error {
	ifaces, err := gopnet.Interfaces()
	if err != nil {
		return fmt.Errorf("diagnostics: cannot enumerate network interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if hasFlag(iface.Flags, "loopback") {
			continue
		}
		if hasFlag(iface.Flags, "up") {
			return nil
		}
	}
	return fmt.Errorf("diagnostics: no active non-loopback network interface found")
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// HostStats is a snapshot of the driver-station host's own resource
// usage, distinct from the robot's wire-decoded telemetry (§4.1).
type HostStats struct {
	CPUPercent float64
	MemPercent float64
}

// SampleHostStats reads current CPU and memory usage for the dev console.
func SampleHostStats() (HostStats, error) {
	cpuPercent, err := cpu.Percent(0, false)
	if err != nil {
		return HostStats{}, fmt.Errorf("diagnostics: cpu sample: %w", err)
	}
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return HostStats{}, fmt.Errorf("diagnostics: mem sample: %w", err)
	}
	var cpuPct float64
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}
	return HostStats{CPUPercent: cpuPct, MemPercent: memInfo.UsedPercent}, nil
}

// HostSamplePeriod is how often the dev console refreshes HostStats.
const HostSamplePeriod = time.Second
