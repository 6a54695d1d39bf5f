package volume

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Volume is a local fixed volume that can be scanned.
type Volume struct {
	DeviceID   string `json:"deviceId"`
	Mountpoint string `json:"mountpoint"`
	SizeBytes  uint64 `json:"sizeBytes"`
	Label      string `json:"label,omitempty"`
}

// Display renders "<device> - <GB> GB (<label>)".
func (v Volume) Display() string {
	gb := float64(v.SizeBytes) / (1024 * 1024 * 1024)
	s := fmt.Sprintf("%s - %.2f GB", v.DeviceID, gb)
	if v.Label != "" {
		s += fmt.Sprintf(" (%s)", v.Label)
	}
	return s
}

// Root is the path a scan of this volume starts from.
func (v Volume) Root() string {
	if v.Mountpoint != "" {
		return v.Mountpoint
	}
	return v.DeviceID + string(filepath.Separator)
}

// Lister abstracts the host's partition table for tests.
type Lister interface {
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	Usage(ctx context.Context, path string) (*disk.UsageStat, error)
	Label(ctx context.Context, device string) (string, error)
}

type hostLister struct{}

func (hostLister) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (hostLister) Usage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (hostLister) Label(ctx context.Context, device string) (string, error) {
	return disk.LabelWithContext(ctx, filepath.Base(device))
}

// Host lists volumes from the running machine.
var Host Lister = hostLister{}

// List returns the physical volumes reported by l, sorted by device id,
// skipping any whose mountpoint is in exclude. Volumes whose usage cannot be
// read are skipped; a missing label is not an error.
func List(ctx context.Context, l Lister, exclude []string) ([]Volume, error) {
	parts, err := l.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	seen := make(map[string]bool)
	var out []Volume
	for _, p := range parts {
		if seen[p.Mountpoint] || slices.Contains(exclude, p.Mountpoint) {
			continue
		}
		seen[p.Mountpoint] = true
		u, err := l.Usage(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		label, _ := l.Label(ctx, p.Device)
		out = append(out, Volume{
			DeviceID:   strings.TrimSuffix(p.Device, `\`),
			Mountpoint: p.Mountpoint,
			SizeBytes:  u.Total,
			Label:      strings.TrimSpace(label),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}
