//go:build !windows

package switcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/valo-accounts/internal/valo/junction"
	"github.com/example/valo-accounts/internal/valo/layout"
	"github.com/example/valo-accounts/internal/valo/transfer"
)

type fakeResolver map[int64]string

func (f fakeResolver) AccountFolder(id int64) (string, error) {
	folder, ok := f[id]
	if !ok {
		return "", fmt.Errorf("account %d not found", id)
	}
	return folder, nil
}

type fakePointer struct {
	sets []*int64
}

func (p *fakePointer) SetActiveAccount(id *int64) error {
	p.sets = append(p.sets, id)
	return nil
}

func (p *fakePointer) last(t *testing.T) *int64 {
	t.Helper()
	require.NotEmpty(t, p.sets)
	return p.sets[len(p.sets)-1]
}

type harness struct {
	engine  *Engine
	cfg     Config
	pointer *fakePointer
	links   junction.Manager
}

func newHarness(t *testing.T, accounts fakeResolver) *harness {
	t.Helper()
	tmp := t.TempDir()
	live := filepath.Join(tmp, "Riot Client", "Data")
	require.NoError(t, os.MkdirAll(filepath.Dir(live), 0o755))

	fs := afero.NewOsFs()
	links := junction.New(zerolog.Nop())
	pointer := &fakePointer{}
	engine := New(fs, links, transfer.New(fs, zerolog.Nop()), accounts, pointer, zerolog.Nop())

	return &harness{
		engine: engine,
		cfg: Config{
			LiveDataPath:    live,
			AccountDataRoot: filepath.Join(tmp, "Data"),
		},
		pointer: pointer,
		links:   links,
	}
}

func (h *harness) resolvedTarget(t *testing.T) string {
	t.Helper()
	target, err := h.links.ResolveRedirect(h.cfg.LiveDataPath)
	require.NoError(t, err)
	return target
}

func ptr(id int64) *int64 { return &id }

func TestSwitchFreshToAccount(t *testing.T) {
	const folder = "007_20240101120000"
	h := newHarness(t, fakeResolver{7: folder})

	require.NoError(t, h.engine.Switch(h.cfg, ptr(7)))

	target := layout.AccountPath(h.cfg.AccountDataRoot, folder)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Marker file names the mounted folder.
	_, err = os.Stat(filepath.Join(target, folder))
	assert.NoError(t, err)

	assert.Equal(t, target, h.resolvedTarget(t))
	assert.Equal(t, ptr(7), h.pointer.last(t))
}

func TestSwitchRescuesRealDirectory(t *testing.T) {
	const folder = "007_20240101120000"
	h := newHarness(t, fakeResolver{7: folder})

	// A live directory with real client data, as found on first run.
	require.NoError(t, os.MkdirAll(h.cfg.LiveDataPath, 0o755))
	payload := make([]byte, 100)
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.LiveDataPath, "settings.dat"), payload, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(h.cfg.LiveDataPath, "cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.LiveDataPath, "cache", "entry.bin"), []byte("cached"), 0o644))

	require.NoError(t, h.engine.Switch(h.cfg, ptr(7)))

	target := layout.AccountPath(h.cfg.AccountDataRoot, folder)
	info, err := os.Stat(filepath.Join(target, "settings.dat"))
	require.NoError(t, err)
	assert.EqualValues(t, 100, info.Size())

	content, err := os.ReadFile(filepath.Join(target, "cache", "entry.bin"))
	require.NoError(t, err)
	assert.Equal(t, "cached", string(content))

	// The live path is now an alias; the data is only reachable through it.
	linkInfo, err := os.Lstat(h.cfg.LiveDataPath)
	require.NoError(t, err)
	assert.NotZero(t, linkInfo.Mode()&os.ModeSymlink)
	assert.Equal(t, target, h.resolvedTarget(t))

	through, err := os.ReadFile(filepath.Join(h.cfg.LiveDataPath, "settings.dat"))
	require.NoError(t, err)
	assert.Len(t, through, 100)
}

func TestSwitchIdempotent(t *testing.T) {
	const folder = "001_20240101120000"
	h := newHarness(t, fakeResolver{1: folder})

	require.NoError(t, h.engine.Switch(h.cfg, ptr(1)))
	require.NoError(t, h.engine.Switch(h.cfg, ptr(1)))

	target := layout.AccountPath(h.cfg.AccountDataRoot, folder)
	assert.Equal(t, target, h.resolvedTarget(t))
	assert.Equal(t, ptr(1), h.pointer.last(t))
	assert.Len(t, h.pointer.sets, 2)
}

func TestSwitchToNoneCreatesSentinel(t *testing.T) {
	h := newHarness(t, fakeResolver{})

	require.NoError(t, h.engine.Switch(h.cfg, nil))

	sentinel := layout.SentinelPath(h.cfg.AccountDataRoot)
	info, err := os.Stat(sentinel)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, sentinel, h.resolvedTarget(t))
	assert.Nil(t, h.pointer.last(t))
}

func TestSwitchSequencePreservesAllData(t *testing.T) {
	h := newHarness(t, fakeResolver{
		1: "001_20240101120000",
		2: "002_20240101120000",
	})

	require.NoError(t, h.engine.Switch(h.cfg, ptr(1)))
	// The client writes through the live alias.
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.LiveDataPath, "cookies.dat"), []byte("account one"), 0o644))

	require.NoError(t, h.engine.Switch(h.cfg, ptr(2)))
	require.NoError(t, os.WriteFile(filepath.Join(h.cfg.LiveDataPath, "cookies.dat"), []byte("account two"), 0o644))

	require.NoError(t, h.engine.Switch(h.cfg, ptr(1)))

	content, err := os.ReadFile(filepath.Join(h.cfg.LiveDataPath, "cookies.dat"))
	require.NoError(t, err)
	assert.Equal(t, "account one", string(content))

	// Account two's data still exists under exactly its own folder.
	other, err := os.ReadFile(filepath.Join(h.cfg.AccountDataRoot, "002_20240101120000", "cookies.dat"))
	require.NoError(t, err)
	assert.Equal(t, "account two", string(other))
}

func TestSwitchUnknownAccountLeavesStateUntouched(t *testing.T) {
	h := newHarness(t, fakeResolver{1: "001_20240101120000"})
	require.NoError(t, h.engine.Switch(h.cfg, ptr(1)))

	err := h.engine.Switch(h.cfg, ptr(99))
	require.Error(t, err)

	// The existing redirection and pointer survive a failed resolve.
	assert.Equal(t,
		layout.AccountPath(h.cfg.AccountDataRoot, "001_20240101120000"),
		h.resolvedTarget(t))
	assert.Len(t, h.pointer.sets, 1)
}

func TestSwitchReplacesDanglingAlias(t *testing.T) {
	const folder = "003_20240101120000"
	h := newHarness(t, fakeResolver{3: folder})

	// A previous run left an alias to a folder that no longer exists.
	require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "gone"), h.cfg.LiveDataPath))

	require.NoError(t, h.engine.Switch(h.cfg, ptr(3)))
	assert.Equal(t, layout.AccountPath(h.cfg.AccountDataRoot, folder), h.resolvedTarget(t))
}

func TestInspect(t *testing.T) {
	const folder = "005_20240101120000"
	h := newHarness(t, fakeResolver{5: folder})

	assert.Equal(t, StateAbsent, h.engine.Inspect(h.cfg).State)

	require.NoError(t, os.MkdirAll(h.cfg.LiveDataPath, 0o755))
	assert.Equal(t, StateRealDirectory, h.engine.Inspect(h.cfg).State)
	require.NoError(t, os.Remove(h.cfg.LiveDataPath))

	require.NoError(t, h.engine.Switch(h.cfg, ptr(5)))
	status := h.engine.Inspect(h.cfg)
	assert.Equal(t, StateJunction, status.State)
	assert.Equal(t, layout.AccountPath(h.cfg.AccountDataRoot, folder), status.Target)
}
