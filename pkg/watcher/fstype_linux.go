//go:build linux

package watcher

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Filesystem magic numbers from statfs(2).
const (
	magicNFS   = 0x6969
	magicSMB   = 0x517B
	magicCIFS  = 0xFF534D42
	magicSMB2  = 0xFE534D42
	magicFUSE  = 0x65735546
	magicV9FS  = 0x01021997
	magicAFS   = 0x5346414F
	magicCeph  = 0x00C36400
	magicOvl   = 0x794C7630
	magicTmpfs = 0x01021994
)

// DetectFilesystemType classifies the filesystem holding path. When path does
// not exist yet its directory is inspected instead.
func DetectFilesystemType(path string) FilesystemType {
	target := path
	if _, err := os.Stat(target); err != nil {
		target = filepath.Dir(path)
	}
	var st unix.Statfs_t
	if err := unix.Statfs(target, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		return FSTypeFUSE
	case magicV9FS, magicAFS, magicCeph:
		return FSTypeNetwork
	case magicOvl, magicTmpfs:
		return FSTypeLocal
	default:
		return FSTypeLocal
	}
}
