package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVolume(t *testing.T) *Volume {
	t.Helper()
	return &Volume{Dir: t.TempDir(), Prefix: "LOG_", Ext: ".CSV"}
}

func touch(t *testing.T, v *Volume, i int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(v.Dir, v.Name(i)), []byte("old\n"), 0o644))
}

func TestInit(t *testing.T) {
	v := testVolume(t)
	require.NoError(t, v.Init())
	entries, err := os.ReadDir(v.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file removed")

	missing := &Volume{Dir: filepath.Join(v.Dir, "nope")}
	assert.Error(t, missing.Init())

	touch(t, v, 0)
	notDir := &Volume{Dir: filepath.Join(v.Dir, v.Name(0))}
	assert.Error(t, notDir.Init())
}

func TestCreate_SkipsExisting(t *testing.T) {
	v := testVolume(t)
	for i := 0; i < 4; i++ {
		touch(t, v, i)
	}
	lf, err := v.Create(time.Time{})
	require.NoError(t, err)
	defer lf.Close()
	assert.Equal(t, filepath.Join(v.Dir, "LOG_0004.CSV"), lf.Name())

	b, err := os.ReadFile(filepath.Join(v.Dir, "LOG_0000.CSV"))
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(b), "existing files untouched")
}

func TestCreate_FillsGaps(t *testing.T) {
	v := testVolume(t)
	touch(t, v, 0)
	touch(t, v, 2)
	lf, err := v.Create(time.Time{})
	require.NoError(t, err)
	defer lf.Close()
	assert.Equal(t, "LOG_0001.CSV", filepath.Base(lf.Name()))
}

func TestCreate_AllTaken(t *testing.T) {
	v := testVolume(t)
	for i := 0; i <= maxIndex; i++ {
		touch(t, v, i)
	}
	_, err := v.Create(time.Time{})
	assert.EqualError(t, err, "storage: all LOG_####.CSV names in use")
}

func TestCreate_Stamp(t *testing.T) {
	v := testVolume(t)
	stamp := time.Date(2024, 3, 23, 12, 35, 19, 0, time.UTC)
	lf, err := v.Create(stamp)
	require.NoError(t, err)
	defer lf.Close()

	st, err := os.Stat(lf.Name())
	require.NoError(t, err)
	assert.True(t, st.ModTime().Equal(stamp), "mtime=%s", st.ModTime())
}

func TestLogFile_FlushMakesDataVisible(t *testing.T) {
	v := testVolume(t)
	lf, err := v.Create(time.Time{})
	require.NoError(t, err)

	_, err = lf.WriteString("a\tb\n")
	require.NoError(t, err)
	b, _ := os.ReadFile(lf.Name())
	assert.Empty(t, b, "buffered until flush")

	require.NoError(t, lf.Flush())
	b, _ = os.ReadFile(lf.Name())
	assert.Equal(t, "a\tb\n", string(b))

	require.NoError(t, lf.Close())
	require.NoError(t, lf.Close())
	_, err = lf.WriteString("x")
	assert.Error(t, err)
}
