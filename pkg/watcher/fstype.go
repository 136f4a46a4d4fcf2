package watcher

// FilesystemType is a best-effort classification of the filesystem holding
// the watched file. Remote filesystems rarely deliver inotify events, so the
// watcher polls on them.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeFUSE
	FSTypeNetwork // other network filesystems (9p, AFS, Ceph)
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeFUSE:
		return "fuse"
	case FSTypeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

func isRemoteFilesystem(t FilesystemType) bool {
	switch t {
	case FSTypeNFS, FSTypeSMB, FSTypeFUSE, FSTypeNetwork:
		return true
	}
	return false
}
