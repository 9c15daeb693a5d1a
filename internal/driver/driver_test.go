package driver

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsavi/tlve/internal/streambuf"
)

func TestSource_ReadsPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	src := NewSource(path, "")
	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.NoError(t, src.Close())
}

func TestSource_StdinName(t *testing.T) {
	src := NewSource("-", "")
	require.NoError(t, src.Open())
	assert.Equal(t, os.Stdin, src.r)
}

func TestSource_TLVEOPENPipesThroughShell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	src := NewSource(path, "cat %s")
	require.NoError(t, src.Open())

	c, ok := src.Peek()
	require.True(t, ok, "openPiped should have probed a peek byte")

	rest, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(c)+string(rest))
	require.NoError(t, src.Close())
}

func TestSource_TLVEOPENFallsBackWhenCommandProducesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(path, []byte("raw"), 0o644))

	src := NewSource(path, "true %s")
	require.NoError(t, src.Open())

	_, ok := src.Peek()
	assert.False(t, ok, "the fallback-to-direct-file path has no peek byte")

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))
}

func TestSource_PeekByteIsMergedBackByInjectPeek(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	src := NewSource(path, "cat %s")
	require.NoError(t, src.Open())

	buf := streambuf.New(0, []io.Reader{src})
	if c, ok := src.Peek(); ok {
		buf.InjectPeek(c)
	}

	require.True(t, buf.Needed(7))
	assert.Equal(t, "payload", string(buf.Data()[:7]))
}

func TestDefaultConfigPath_UsesHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.tlverc", defaultConfigPath())
}

func TestDefaultConfigPath_FallsBackWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	assert.Equal(t, ".tlverc", defaultConfigPath())
}

func TestLocaleCodeset_ParsesCharsetSuffix(t *testing.T) {
	t.Setenv("LC_ALL", "en_US.UTF-8")
	assert.Equal(t, "UTF-8", localeCodeset())
}

func TestLocaleCodeset_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_CTYPE", "")
	t.Setenv("LANG", "")
	assert.Equal(t, "UTF-8", localeCodeset())
}

func TestDisplayName_RendersStdinForDash(t *testing.T) {
	assert.Equal(t, "stdin", displayName("-"))
	assert.Equal(t, "report.bin", displayName("report.bin"))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestWriteDebugDump_WritesUnreadBytesCappedAt256(t *testing.T) {
	chdirTemp(t)

	data := strings.Repeat("x", debugDumpLimit+100)
	buf := streambuf.New(0, []io.Reader{strings.NewReader(data)})
	require.True(t, buf.Needed(debugDumpLimit+50))

	writeDebugDump(buf)

	got, err := os.ReadFile(debugDumpPath)
	require.NoError(t, err)
	assert.Len(t, got, debugDumpLimit)
	assert.Equal(t, strings.Repeat("x", debugDumpLimit), string(got))
}

func TestWriteDebugDump_NoFileWhenNothingUnread(t *testing.T) {
	chdirTemp(t)

	buf := streambuf.New(0, []io.Reader{strings.NewReader("")})
	writeDebugDump(buf)

	_, err := os.Stat(debugDumpPath)
	assert.True(t, os.IsNotExist(err))
}
