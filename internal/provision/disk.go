package provision

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DiskExpandStep grows the root logical volume into any free space left
// in its volume group, then resizes the filesystem. It runs only when
// the operator passed --expand-disk and is best-effort: images without
// LVM or without free extents just log a warning.
type DiskExpandStep struct {
	lvPath string
}

func (*DiskExpandStep) Name() string { return "disk-expand" }

func (d *DiskExpandStep) Needed(ctx context.Context, st *State) (bool, error) {
	if !st.ExpandDisk {
		return false, nil
	}

	free, err := vgFreeBytes(ctx, st)
	if err != nil {
		return false, err
	}

	if free == 0 {
		return false, nil
	}

	out, err := st.Run.Run(ctx, "lvs", "--noheadings", "-o", "lv_path")
	if err != nil {
		return false, fmt.Errorf("listing logical volumes: %w", err)
	}

	lines := strings.Fields(string(out))
	if len(lines) == 0 {
		return false, nil
	}

	d.lvPath = lines[0]

	return true, nil
}

func (d *DiskExpandStep) Apply(ctx context.Context, st *State) error {
	if _, err := st.Run.Run(ctx, "lvextend", "-l", "+100%FREE", d.lvPath); err != nil {
		return fmt.Errorf("extending %s: %w", d.lvPath, err)
	}

	if _, err := st.Run.Run(ctx, "resize2fs", d.lvPath); err != nil {
		return fmt.Errorf("resizing filesystem on %s: %w", d.lvPath, err)
	}

	return nil
}

// vgFreeBytes returns the free space of the first volume group.
func vgFreeBytes(ctx context.Context, st *State) (uint64, error) {
	out, err := st.Run.Run(ctx, "vgs",
		"--noheadings", "--units", "b", "--nosuffix", "-o", "vg_free",
	)
	if err != nil {
		return 0, fmt.Errorf("querying volume groups: %w", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, nil
	}

	free, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing vg_free %q: %w", fields[0], err)
	}

	return free, nil
}
