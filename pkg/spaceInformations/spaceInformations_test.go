package spaceInformations

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/disk"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestContains(t *testing.T) {
	require.True(t, contains("/a/b", "/"))
	require.True(t, contains("/a/b", "/a"))
	require.True(t, contains("/a/b", "/a/"))
	require.True(t, contains("/a", "/a"))
	require.False(t, contains("/ab", "/a"))
	require.False(t, contains("/a", ""))
}

func TestGetDeviceAndMountPoint_TempDirNested(t *testing.T) {
	partitions, err := disk.Partitions(true)
	require.NoError(t, err)
	if len(partitions) == 0 {
		t.Skip("no partitions available on this system")
	}

	nested := filepath.Join(t.TempDir(), "some", "nested", "path")
	mountPoint, _, err := GetDeviceAndMountPoint(nested)
	if err != nil {
		t.Skipf("no partition covers %q: %v", nested, err)
	}
	require.True(t, contains(nested, mountPoint))
}

func TestExistingAncestor(t *testing.T) {
	base := t.TempDir()
	got, err := existingAncestor(filepath.Join(base, "x", "y"))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(base)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestCalculateDirectorySize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 100), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 23), 0o600))

	size, err := CalculateDirectorySize(dir)
	require.NoError(t, err)
	require.EqualValues(t, 123, size)
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, CheckFreeSpace([]string{dir}, 0))

	err := CheckFreeSpace([]string{dir}, 1<<30)
	require.ErrorIs(t, err, ErrInsufficientSpace)
}

func TestDisplayDiskUsage(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	require.NoError(t, DisplayDiskUsage(log, []string{t.TempDir()}))
	require.Contains(t, buf.String(), "Disk usage for store path")

	require.Error(t, DisplayDiskUsage(log, nil))
}
