package secret

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/chacha20poly1305"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	box := New(afero.NewMemMapFs(), "/keys/app.key")

	sealed, err := box.Encrypt("hunter2")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "hunter2")

	plain, err := box.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestEncryptRandomizesCiphertext(t *testing.T) {
	box := New(afero.NewMemMapFs(), "/keys/app.key")

	first, err := box.Encrypt("same")
	require.NoError(t, err)
	second, err := box.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestKeyGeneratedOnFirstUse(t *testing.T) {
	fs := afero.NewMemMapFs()
	box := New(fs, "/keys/app.key")

	_, err := box.Encrypt("x")
	require.NoError(t, err)

	info, err := fs.Stat("/keys/app.key")
	require.NoError(t, err)
	assert.EqualValues(t, chacha20poly1305.KeySize, info.Size())
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	sealed, err := New(afero.NewMemMapFs(), "/a.key").Encrypt("secret")
	require.NoError(t, err)

	// A box with its own key cannot open the ciphertext.
	_, err = New(afero.NewMemMapFs(), "/b.key").Decrypt(sealed)
	assert.Error(t, err)
}

func TestDecryptShortCiphertext(t *testing.T) {
	box := New(afero.NewMemMapFs(), "/keys/app.key")

	_, err := box.Decrypt(nil)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = box.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestCorruptKeyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/keys/app.key", []byte("truncated"), 0o600))

	_, err := New(fs, "/keys/app.key").Encrypt("x")
	assert.ErrorContains(t, err, "corrupt")
}
