// Package storage manages the log volume: checking it is usable, claiming
// the next free LOG_####.CSV name and writing records durably.
package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const maxIndex = 9999

type Volume struct {
	Dir    string
	Prefix string
	Ext    string
}

// Init checks that Dir exists, is a directory and accepts new files.
func (v *Volume) Init() error {
	st, err := os.Stat(v.Dir)
	if err != nil {
		return errors.Wrap(err, "storage: volume unavailable")
	}
	if !st.IsDir() {
		return errors.Errorf("storage: %s is not a directory", v.Dir)
	}
	probe, err := os.CreateTemp(v.Dir, ".probe-*")
	if err != nil {
		return errors.Wrapf(err, "storage: %s is not writable", v.Dir)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Name returns the file name for index i, e.g. LOG_0042.CSV.
func (v *Volume) Name(i int) string {
	return fmt.Sprintf("%s%04d%s", v.Prefix, i, v.Ext)
}

// Create claims the lowest unused index. The file is created exclusively, so
// a name that exists is never reopened. When stamp is non-zero the file's
// times are set to it.
func (v *Volume) Create(stamp time.Time) (*LogFile, error) {
	for i := 0; i <= maxIndex; i++ {
		path := filepath.Join(v.Dir, v.Name(i))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "storage: create %s", path)
		}
		if !stamp.IsZero() {
			if err := os.Chtimes(path, stamp, stamp); err != nil {
				log.WithError(err).WithField("path", path).Warn("storage: could not set file time")
			}
		}
		log.WithField("path", path).Info("storage: logging to new file")
		return &LogFile{f: f, w: bufio.NewWriter(f), path: path}, nil
	}
	return nil, errors.Errorf("storage: all %s####%s names in use", v.Prefix, v.Ext)
}

// LogFile buffers writes until Flush, which also syncs to the medium.
type LogFile struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

func (l *LogFile) Name() string { return l.path }

func (l *LogFile) Write(p []byte) (int, error) {
	if l.f == nil {
		return 0, errors.New("storage: log file closed")
	}
	return l.w.Write(p)
}

func (l *LogFile) WriteString(s string) (int, error) {
	if l.f == nil {
		return 0, errors.New("storage: log file closed")
	}
	return l.w.WriteString(s)
}

func (l *LogFile) Flush() error {
	if l.f == nil {
		return errors.New("storage: log file closed")
	}
	if err := l.w.Flush(); err != nil {
		return errors.Wrap(err, "storage: flush")
	}
	return errors.Wrap(l.f.Sync(), "storage: sync")
}

func (l *LogFile) Close() error {
	if l.f == nil {
		return nil
	}
	ferr := l.Flush()
	cerr := l.f.Close()
	l.f = nil
	if ferr != nil {
		return ferr
	}
	return cerr
}
