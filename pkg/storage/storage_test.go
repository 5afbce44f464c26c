package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskSaveOpenRemove(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	name, err := disk.Save("statements/1/extrato.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "statements/1/extrato.csv", name)

	file, err := disk.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "a,b\n", string(body))

	require.NoError(t, disk.Remove(name))
	_, err = disk.Open(name)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, disk.Remove(name))
}

func TestDiskRejectsEscapingPaths(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../secret", "/etc/passwd", "", "a/../../b"} {
		_, err := disk.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}
}

func TestDiskSweepRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(dir)
	require.NoError(t, err)

	_, err = disk.Save("old.pdf", []byte("old"))
	require.NoError(t, err)
	_, err = disk.Save("new.pdf", []byte("new"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), past, past))

	removed, err := disk.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.pdf"}, removed)
}

func TestLinkSignerRoundTrip(t *testing.T) {
	signer := NewLinkSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("teacher-1", "statements/teacher-1/extrato.pdf")
	require.NoError(t, err)

	owner, name, parsed, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", owner)
	assert.Equal(t, "statements/teacher-1/extrato.pdf", name)
	assert.True(t, expiresAt.Equal(parsed))
}

func TestLinkSignerRejectsTamperingAndExpiry(t *testing.T) {
	signer := NewLinkSigner("secret", time.Minute)
	token, _, err := signer.Sign("teacher-1", "a.csv")
	require.NoError(t, err)

	_, _, _, err = NewLinkSigner("other", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrLinkSignature)

	_, _, _, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrLinkMalformed)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, _, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrLinkExpired)

	_, _, err = NewLinkSigner("", time.Minute).Sign("a", "b")
	assert.Error(t, err)
}
