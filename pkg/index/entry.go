package index

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"syscall"

	"github.com/grit-vcs/grit/pkg/database"
)

const maxPathSize = 0xFFF

// Entry is one staged file with the stat fields git uses to detect change
// without re-hashing.
type Entry struct {
	Ctime     uint32
	CtimeNsec uint32
	Mtime     uint32
	MtimeNsec uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32
	OID       string
	Flags     uint16
	Path      string
}

func newEntry(path, oid string, stat os.FileInfo) *Entry {
	flags := len(path)
	if flags > maxPathSize {
		flags = maxPathSize
	}

	entry := &Entry{
		Mode:  ModeForStat(stat),
		Size:  uint32(stat.Size()),
		OID:   oid,
		Flags: uint16(flags),
		Path:  path,
	}
	entry.applyStat(stat)
	return entry
}

// ModeForStat maps a file stat onto the two tracked git modes.
func ModeForStat(stat os.FileInfo) uint32 {
	if stat.Mode()&0o111 != 0 {
		return database.ExecutableMode
	}
	return database.RegularMode
}

func (e *Entry) Stage() uint16 {
	return (e.Flags >> 12) & 0x3
}

func (e *Entry) key() entryKey {
	return entryKey{path: e.Path, stage: e.Stage()}
}

func (e *Entry) parentDirectories() []string {
	return database.ParentDirectories(e.Path)
}

// DatabaseEntry converts the staged entry into its tree form.
func (e *Entry) DatabaseEntry() database.Entry {
	return database.NewEntry(e.Path, e.OID, e.Mode)
}

// StatMatch reports whether the stat plausibly matches the entry: equal
// modes, and equal sizes unless the recorded size is zero.
func (e *Entry) StatMatch(stat os.FileInfo) bool {
	return e.Mode == ModeForStat(stat) && (e.Size == 0 || e.Size == uint32(stat.Size()))
}

// TimesMatch reports whether both recorded timestamps equal the stat's.
func (e *Entry) TimesMatch(stat os.FileInfo) bool {
	sys := stat.Sys().(*syscall.Stat_t)
	return e.Ctime == uint32(sys.Ctim.Sec) && e.CtimeNsec == uint32(sys.Ctim.Nsec) &&
		e.Mtime == uint32(sys.Mtim.Sec) && e.MtimeNsec == uint32(sys.Mtim.Nsec)
}

// UpdateStat refreshes the cached stat fields after the content was verified
// unchanged.
func (e *Entry) UpdateStat(stat os.FileInfo) {
	e.Mode = ModeForStat(stat)
	e.Size = uint32(stat.Size())
	e.applyStat(stat)
}

func (e *Entry) applyStat(stat os.FileInfo) {
	sys := stat.Sys().(*syscall.Stat_t)
	e.Ctime = uint32(sys.Ctim.Sec)
	e.CtimeNsec = uint32(sys.Ctim.Nsec)
	e.Mtime = uint32(sys.Mtim.Sec)
	e.MtimeNsec = uint32(sys.Mtim.Nsec)
	e.Dev = uint32(sys.Dev)
	e.Ino = uint32(sys.Ino)
	e.UID = sys.Uid
	e.GID = sys.Gid
}

// bytes serializes the entry: ten big-endian 32-bit fields, the raw oid,
// flags, and the NUL-terminated path padded to 8-byte alignment.
func (e *Entry) bytes() []byte {
	buf := make([]byte, 0, 64+len(e.Path))

	for _, field := range []uint32{
		e.Ctime, e.CtimeNsec, e.Mtime, e.MtimeNsec,
		e.Dev, e.Ino, e.Mode, e.UID, e.GID, e.Size,
	} {
		buf = binary.BigEndian.AppendUint32(buf, field)
	}

	oid, _ := hex.DecodeString(e.OID)
	buf = append(buf, oid...)
	buf = binary.BigEndian.AppendUint16(buf, e.Flags)
	buf = append(buf, e.Path...)
	buf = append(buf, 0)

	for len(buf)%8 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func parseEntry(data []byte) (*Entry, error) {
	if len(data) < 63 {
		return nil, fmt.Errorf("index entry truncated: %d bytes", len(data))
	}

	fields := make([]uint32, 10)
	for i := range fields {
		fields[i] = binary.BigEndian.Uint32(data[i*4 : (i+1)*4])
	}

	path := data[62:]
	for len(path) > 0 && path[len(path)-1] == 0 {
		path = path[:len(path)-1]
	}

	return &Entry{
		Ctime:     fields[0],
		CtimeNsec: fields[1],
		Mtime:     fields[2],
		MtimeNsec: fields[3],
		Dev:       fields[4],
		Ino:       fields[5],
		Mode:      fields[6],
		UID:       fields[7],
		GID:       fields[8],
		Size:      fields[9],
		OID:       hex.EncodeToString(data[40:60]),
		Flags:     binary.BigEndian.Uint16(data[60:62]),
		Path:      string(path),
	}, nil
}
