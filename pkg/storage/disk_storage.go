// Package storage persists the course catalog as a gzipped gob snapshot so
// a restarted node can serve before the first full sync arrives.
package storage

import (
	"compress/gzip"
	"encoding/gob"
	"os"
	"path"

	"github.com/zhafed/richie/pkg/types"
)

const coursesFile = "courses.gob.gz"

type DiskStorage struct {
	Path string
}

func NewDiskStorage(basePath string) *DiskStorage {
	return &DiskStorage{Path: basePath}
}

func (d *DiskStorage) fileName(name string) string {
	return path.Join(d.Path, name)
}

func unavailable(op string, err error) error {
	return &types.UpstreamUnavailable{Op: op, Err: err}
}

// SaveCourses writes the snapshot to a temporary file first so a crash
// mid-write never corrupts the previous snapshot.
func (d *DiskStorage) SaveCourses(courses []*types.Course) error {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return unavailable("create storage dir", err)
	}
	tmp := d.fileName(coursesFile + ".tmp")
	file, err := os.Create(tmp)
	if err != nil {
		return unavailable("create snapshot", err)
	}

	zw := gzip.NewWriter(file)
	if err := gob.NewEncoder(zw).Encode(courses); err != nil {
		file.Close()
		os.Remove(tmp)
		return unavailable("encode snapshot", err)
	}
	if err := zw.Close(); err != nil {
		file.Close()
		os.Remove(tmp)
		return unavailable("close snapshot", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return unavailable("close snapshot", err)
	}
	if err := os.Rename(tmp, d.fileName(coursesFile)); err != nil {
		return unavailable("publish snapshot", err)
	}
	return nil
}

// LoadCourses reads the snapshot back. A missing file is not an error: the
// node simply starts empty.
func (d *DiskStorage) LoadCourses() ([]*types.Course, error) {
	file, err := os.Open(d.fileName(coursesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, unavailable("open snapshot", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, unavailable("read snapshot", err)
	}
	defer zr.Close()

	var courses []*types.Course
	if err := gob.NewDecoder(zr).Decode(&courses); err != nil {
		return nil, unavailable("decode snapshot", err)
	}
	return courses, nil
}
