package volume

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
)

type fakeLister struct {
	parts  []disk.PartitionStat
	usage  map[string]uint64
	labels map[string]string
}

func (f fakeLister) Partitions(context.Context) ([]disk.PartitionStat, error) { return f.parts, nil }

func (f fakeLister) Usage(_ context.Context, path string) (*disk.UsageStat, error) {
	total, ok := f.usage[path]
	if !ok {
		return nil, errors.New("no usage")
	}
	return &disk.UsageStat{Path: path, Total: total}, nil
}

func (f fakeLister) Label(_ context.Context, device string) (string, error) {
	if l, ok := f.labels[device]; ok {
		return l, nil
	}
	return "", errors.New("no label")
}

func TestList_SortsFiltersAndLabels(t *testing.T) {
	const gib = 1024 * 1024 * 1024
	l := fakeLister{
		parts: []disk.PartitionStat{
			{Device: "/dev/sdb1", Mountpoint: "/mnt/roms"},
			{Device: "/dev/sda1", Mountpoint: "/"},
			{Device: "/dev/sda2", Mountpoint: "/boot"},
			{Device: "/dev/sdc1", Mountpoint: "/mnt/broken"},
			{Device: "/dev/sdb1", Mountpoint: "/mnt/roms"},
		},
		usage:  map[string]uint64{"/mnt/roms": 931 * gib, "/": 100 * gib, "/boot": gib},
		labels: map[string]string{"/dev/sdb1": "ROMS "},
	}
	vols, err := List(context.Background(), l, []string{"/boot"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(vols) != 2 {
		t.Fatalf("expected 2 volumes, got %+v", vols)
	}
	if vols[0].DeviceID != "/dev/sda1" || vols[1].DeviceID != "/dev/sdb1" {
		t.Fatalf("unexpected order: %+v", vols)
	}
	if got := vols[1].Display(); got != "/dev/sdb1 - 931.00 GB (ROMS)" {
		t.Fatalf("Display = %q", got)
	}
	if got := vols[0].Display(); got != "/dev/sda1 - 100.00 GB" {
		t.Fatalf("Display = %q", got)
	}
	if vols[1].Root() != "/mnt/roms" {
		t.Fatalf("Root = %q", vols[1].Root())
	}
}
