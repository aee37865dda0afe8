package spice

import (
	"io"
	"strings"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/vfs"
)

const idWordLen = 8

// Architectures of kernel files.
const (
	ArchDAF     = "DAF"
	ArchDAS     = "DAS"
	ArchKPL     = "KPL"
	ArchUnknown = "?"
)

// FileType is the architecture and kind read from the ID word of a kernel file, for example
// DAF/SPK or KPL/LSK.
type FileType struct {
	Arch string
	Kind string
}

// IsBinary reports whether the file is a binary DAF or DAS kernel.
func (fileType FileType) IsBinary() bool {
	return fileType.Arch == ArchDAF || fileType.Arch == ArchDAS
}

func (fileType FileType) String() string {
	return fileType.Arch + "/" + fileType.Kind
}

// Identify reads the ID word at the start of the file at path. Files without a recognizable
// ID word are reported with the unknown architecture.
func Identify(fs vfs.FS, path string) (FileType, error) {
	file, err := fs.Open(path)
	if err != nil {
		return FileType{}, errors.New(err)
	}
	defer file.Close() //nolint:errcheck

	buf := make([]byte, idWordLen)

	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FileType{}, errors.New(err)
	}

	return parseIDWord(string(buf[:n])), nil
}

func parseIDWord(word string) FileType {
	word = strings.TrimSpace(word)

	switch word {
	case "NAIF/DAF":
		return FileType{Arch: ArchDAF, Kind: ArchUnknown}
	case "NAIF/NIP", "NAIF/DAS":
		return FileType{Arch: ArchDAS, Kind: "EK"}
	}

	arch, kind, ok := strings.Cut(word, "/")
	if !ok {
		return FileType{Arch: ArchUnknown, Kind: ArchUnknown}
	}

	switch arch {
	case ArchDAF, ArchDAS, ArchKPL:
	default:
		return FileType{Arch: ArchUnknown, Kind: ArchUnknown}
	}

	if kind == "" {
		kind = ArchUnknown
	}

	return FileType{Arch: arch, Kind: kind}
}
