//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"machine"
	"os"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs/fatfs"
)

// sdStorage is the FAT-formatted SD card on SPI0 (CS on GP21).
type sdStorage struct {
	sd  *sdcard.Device
	fat *fatfs.FATFS
}

func newSDStorage() Storage {
	return &sdStorage{}
}

func (s *sdStorage) Mount() error {
	sd := sdcard.New(machine.SPI0, machine.GP18, machine.GP19, machine.GP16, machine.GP21)
	if err := sd.Configure(); err != nil {
		return fmt.Errorf("sd configure: %w", err)
	}

	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fat.Mount(); err != nil {
		// Do not auto-format removable media.
		return mapFatErr("mount", err)
	}
	s.sd = &sd
	s.fat = fat
	return nil
}

func (s *sdStorage) ReadDir(dir string) ([]string, error) {
	if s.fat == nil {
		return nil, errors.New("sd: not ready")
	}
	f, err := s.fat.OpenFile(dir, os.O_RDONLY)
	if err != nil {
		return nil, mapFatErr("open dir", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := f.Readdir(0)
	if err != nil {
		return nil, mapFatErr("readdir", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *sdStorage) ReadFile(name string) ([]byte, error) {
	if s.fat == nil {
		return nil, errors.New("sd: not ready")
	}
	f, err := s.fat.OpenFile(name, os.O_RDONLY)
	if err != nil {
		return nil, mapFatErr("open", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, mapFatErr("read", err)
	}
	return data, nil
}

func mapFatErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var fr fatfs.FileResult
	if errors.As(err, &fr) {
		switch fr {
		case fatfs.FileResultNoFile, fatfs.FileResultNoPath:
			return fmt.Errorf("sd %s: %w", op, fs.ErrNotExist)
		case fatfs.FileResultExist:
			return fmt.Errorf("sd %s: %w", op, fs.ErrExist)
		case fatfs.FileResultDenied, fatfs.FileResultLocked:
			return fmt.Errorf("sd %s: %w", op, fs.ErrPermission)
		case fatfs.FileResultNoFilesystem, fatfs.FileResultInvalidName, fatfs.FileResultInvalidParameter:
			return fmt.Errorf("sd %s: %w", op, fs.ErrInvalid)
		default:
			return fmt.Errorf("sd %s: %v", op, err)
		}
	}

	return fmt.Errorf("sd %s: %v", op, err)
}
