package spaceInformations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
)

// ErrInsufficientSpace is returned when a store path has less free space than
// configured.
var ErrInsufficientSpace = errors.New("insufficient free disk space")

// Usage is the disk usage of one store path.
type Usage struct {
	Path       string
	Device     string
	MountPoint string
	Total      uint64
	Free       uint64
	Used       uint64
	UsedByDB   uint64
}

// CalculateDirectorySize calculates the total size of files within a directory
func CalculateDirectorySize(path string) (size int64, err error) {
	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return
}

// existingAncestor walks up from path to the closest directory that exists,
// resolving symlinks on the way.
func existingAncestor(path string) (string, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			current = resolved
		}
		_, err := os.Stat(current)
		if err == nil {
			return current, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("path does not exist: %s", path)
		}
		current = parent
	}
}

// GetDeviceAndMountPoint returns the mount point and device holding path.
// The longest matching mount point wins.
func GetDeviceAndMountPoint(path string) (string, string, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return "", "", err
	}

	matchPath, err := existingAncestor(path)
	if err != nil {
		return "", "", err
	}

	var best disk.PartitionStat
	for _, partition := range partitions {
		if contains(matchPath, partition.Mountpoint) && len(partition.Mountpoint) > len(best.Mountpoint) {
			best = partition
		}
	}
	if best.Mountpoint == "" {
		return "", "", fmt.Errorf("mount point not found for path: %s", path)
	}
	return best.Mountpoint, best.Device, nil
}

// contains checks if a path is within the mount point.
func contains(path, mountpoint string) bool {
	if mountpoint == "" {
		return false
	}

	p := filepath.Clean(path)
	m := filepath.Clean(mountpoint)

	if m == string(os.PathSeparator) || p == m {
		return true
	}

	return strings.HasPrefix(p, strings.TrimSuffix(m, string(os.PathSeparator))+string(os.PathSeparator))
}

// GetUsage collects disk usage for path.
func GetUsage(path string) (Usage, error) {
	dir, err := existingAncestor(path)
	if err != nil {
		return Usage{}, err
	}
	stat, err := disk.Usage(dir)
	if err != nil {
		return Usage{}, fmt.Errorf("error retrieving disk usage for %s: %w", path, err)
	}
	u := Usage{Path: path, Total: stat.Total, Free: stat.Free, Used: stat.Used}

	if mp, dev, err := GetDeviceAndMountPoint(path); err == nil {
		u.MountPoint, u.Device = mp, dev
	}
	if size, err := CalculateDirectorySize(dir); err == nil {
		u.UsedByDB = uint64(size)
	}
	return u, nil
}

// CheckFreeSpace fails when any path has less than minimumFreeGB gigabytes
// free. A minimum of zero disables the check.
func CheckFreeSpace(paths []string, minimumFreeGB int) error {
	if minimumFreeGB <= 0 {
		return nil
	}
	want := uint64(minimumFreeGB) * 1_000_000_000
	for _, path := range paths {
		u, err := GetUsage(path)
		if err != nil {
			return err
		}
		if u.Free < want {
			return fmt.Errorf("%w: %s has %s free, need %s", ErrInsufficientSpace,
				path, humanize.Bytes(u.Free), humanize.Bytes(want))
		}
	}
	return nil
}

// DisplayDiskUsage logs the disk usage of every path.
func DisplayDiskUsage(log *logrus.Logger, paths []string) error {
	if len(paths) == 0 {
		log.Error("No path provided in configuration")
		return fmt.Errorf("no path provided in configuration")
	}

	for _, path := range paths {
		u, err := GetUsage(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Error("Error retrieving disk usage")
			return err
		}

		log.WithFields(logrus.Fields{
			"path":        u.Path,
			"device":      u.Device,
			"mount_point": u.MountPoint,
			"total":       humanize.Bytes(u.Total),
			"used":        humanize.Bytes(u.Used),
			"free":        humanize.Bytes(u.Free),
			"used_by_db":  humanize.Bytes(u.UsedByDB),
		}).Info("Disk usage for store path")
	}

	return nil
}
