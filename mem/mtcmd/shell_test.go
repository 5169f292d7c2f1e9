package mtcmd_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/testutil"
	"github.com/joshuapare/memkit/mem/mtcmd"
	"github.com/joshuapare/memkit/mem/mtest"
)

func newShell(t *testing.T) (*mtcmd.Shell, *mtest.Harness, *bytes.Buffer) {
	t.Helper()
	h := testutil.SetupHarness(t, 4096)
	var out bytes.Buffer
	return mtcmd.New(h, &out), h, &out
}

// requireOptErr checks that err is an *OptionError of kind on tok.
func requireOptErr(t *testing.T, err error, kind mtcmd.OptKind, tok string) {
	t.Helper()
	var oe *mtcmd.OptionError
	require.True(t, errors.As(err, &oe), "want *OptionError, got %v", err)
	assert.Equal(t, kind, oe.Kind, "kind for %v", err)
	assert.Equal(t, tok, oe.Token)
}

func exec(t *testing.T, sh *mtcmd.Shell, line string) error {
	t.Helper()
	st, err := sh.Exec(line)
	if err != nil {
		assert.Equal(t, mtcmd.Error, st, line)
	} else {
		assert.Equal(t, mtcmd.Done, st, line)
	}
	return err
}

func TestExec_BlankAndComment(t *testing.T) {
	sh, _, out := newShell(t)
	require.NoError(t, exec(t, sh, ""))
	require.NoError(t, exec(t, sh, "// mtnew 3"))
	assert.Empty(t, out.String())
	assert.Equal(t, 0, sh.Stats().Commands)
}

func TestExec_UnknownCommand(t *testing.T) {
	sh, _, _ := newShell(t)
	for _, line := range []string{"foo", "MT", "MTX 3", "MTResetNow"} {
		err := exec(t, sh, line)
		require.ErrorIs(t, err, mtcmd.ErrUnknownCommand, line)
	}
	assert.Equal(t, 4, sh.Stats().Errors)
}

func TestExec_Reset(t *testing.T) {
	sh, h, _ := newShell(t)
	require.NoError(t, h.NewObjs(3))

	require.NoError(t, exec(t, sh, "MTReset"))
	assert.Equal(t, 0, h.ObjListSize())
	assert.Equal(t, 4096, h.BlockSize())

	require.NoError(t, exec(t, sh, "mtr 1024"))
	assert.Equal(t, 1024, h.BlockSize())

	err := exec(t, sh, "mtreset 8")
	requireOptErr(t, err, mtcmd.OptIllegal, "8")
	require.ErrorIs(t, err, mtest.ErrIllegalSize)
	assert.Equal(t, 1024, h.BlockSize())

	requireOptErr(t, exec(t, sh, "mtr abc"), mtcmd.OptIllegal, "abc")
	requireOptErr(t, exec(t, sh, "mtr -5"), mtcmd.OptIllegal, "-5")
	requireOptErr(t, exec(t, sh, "mtr 64 1"), mtcmd.OptExtra, "1")
}

func TestExec_New(t *testing.T) {
	sh, h, _ := newShell(t)

	require.NoError(t, exec(t, sh, "MTNew 5"))
	assert.Equal(t, 5, h.ObjListSize())

	require.NoError(t, exec(t, sh, "mtn 3 -a 10"))
	assert.Equal(t, 3, h.ArrListSize())

	require.NoError(t, exec(t, sh, "mtnew -ARRAY 4 2"))
	assert.Equal(t, 5, h.ArrListSize())
	data, err := h.ArrayBytes(4)
	require.NoError(t, err)
	assert.Len(t, data, 4*32)

	tests := []struct {
		line string
		kind mtcmd.OptKind
		tok  string
	}{
		{"mtn", mtcmd.OptMissing, ""},
		{"mtn 0", mtcmd.OptIllegal, "0"},
		{"mtn -2", mtcmd.OptIllegal, "-2"},
		{"mtn x", mtcmd.OptIllegal, "x"},
		{"mtn 3 4", mtcmd.OptExtra, "4"},
		{"mtn 3 -a", mtcmd.OptMissing, "-a"},
		{"mtn -a 4", mtcmd.OptMissing, ""},
		{"mtn 3 -a 0", mtcmd.OptIllegal, "0"},
		{"mtn 3 -a y", mtcmd.OptIllegal, "y"},
		{"mtn 3 -a 2 -a 2", mtcmd.OptExtra, "-a"},
		{"mtn 1 -a 2 5", mtcmd.OptExtra, "5"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			requireOptErr(t, exec(t, sh, tt.line), tt.kind, tt.tok)
			assert.Equal(t, 5, h.ObjListSize())
			assert.Equal(t, 5, h.ArrListSize())
		})
	}
}

func TestExec_NewOutOfMemory(t *testing.T) {
	h := testutil.SetupHarness(t, 64, mtest.WithMaxBlocks(1))
	sh := mtcmd.New(h, &bytes.Buffer{})

	err := exec(t, sh, "mtn 5")
	require.ErrorIs(t, err, mtest.ErrOutOfMemory)
	var be *mtest.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Done)
	assert.Contains(t, err.Error(), "MTNew: ")
	assert.Equal(t, 2, h.ObjListSize())
}

func TestExec_Delete(t *testing.T) {
	sh, h, _ := newShell(t)
	require.NoError(t, h.NewObjs(5))
	require.NoError(t, h.NewArrs(3, 2))

	require.NoError(t, exec(t, sh, "MTDelete -Index 0"))
	assert.Equal(t, 4, h.ObjListSize())

	require.NoError(t, exec(t, sh, "mtd -r 2"))
	assert.Equal(t, 2, h.ObjListSize())

	require.NoError(t, exec(t, sh, "mtd -a -i 1"))
	assert.Equal(t, 2, h.ArrListSize())

	require.NoError(t, exec(t, sh, "mtd -random 1 -array"))
	assert.Equal(t, 1, h.ArrListSize())

	err := exec(t, sh, "mtd -i 10")
	requireOptErr(t, err, mtcmd.OptIllegal, "10")
	require.ErrorIs(t, err, mtest.ErrIndexOutOfRange)
	assert.Equal(t, 2, h.ObjListSize())

	tests := []struct {
		line string
		kind mtcmd.OptKind
		tok  string
	}{
		{"mtd", mtcmd.OptMissing, ""},
		{"mtd -a", mtcmd.OptMissing, ""},
		{"mtd -i", mtcmd.OptMissing, "-i"},
		{"mtd -i -a", mtcmd.OptMissing, "-i"},
		{"mtd -i 0 -r 1", mtcmd.OptIllegal, "-r"},
		{"mtd -r 1 -r 2", mtcmd.OptIllegal, "-r"},
		{"mtd -r 1 -i 0", mtcmd.OptExtra, "-i"},
		{"mtd -i 0 -i 1", mtcmd.OptExtra, "-i"},
		{"mtd -i 0 7", mtcmd.OptExtra, "7"},
		{"mtd 7 -i 0", mtcmd.OptExtra, "7"},
		{"mtd -a -a -i 0", mtcmd.OptIllegal, "-a"},
		{"mtd -a -i 0 -a", mtcmd.OptIllegal, "-a"},
		{"mtd -r 0", mtcmd.OptIllegal, "0"},
		{"mtd -i -1", mtcmd.OptIllegal, "-1"},
		{"mtd -i one", mtcmd.OptIllegal, "one"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			requireOptErr(t, exec(t, sh, tt.line), tt.kind, tt.tok)
			assert.Equal(t, 2, h.ObjListSize())
			assert.Equal(t, 1, h.ArrListSize())
		})
	}
}

func TestExec_DeleteEmptyList(t *testing.T) {
	sh, _, _ := newShell(t)

	err := exec(t, sh, "mtd -i 0")
	requireOptErr(t, err, mtcmd.OptIllegal, "-i")
	require.ErrorIs(t, err, mtest.ErrEmptyList)

	err = exec(t, sh, "mtd -r 3 -a")
	requireOptErr(t, err, mtcmd.OptIllegal, "-r")
}

func TestExec_DeleteRandomExhaustsList(t *testing.T) {
	sh, h, _ := newShell(t)
	require.NoError(t, h.NewObjs(2))

	err := exec(t, sh, "mtd -r 10")
	require.ErrorIs(t, err, mtest.ErrEmptyList)
	var oe *mtcmd.OptionError
	assert.False(t, errors.As(err, &oe), "execution failure, not a bad token")
	assert.Equal(t, 0, h.ObjListSize())
}

func TestExec_Print(t *testing.T) {
	sh, h, out := newShell(t)
	require.NoError(t, h.NewObjs(2))

	require.NoError(t, exec(t, sh, "mtp"))
	assert.Contains(t, out.String(), "Memory Manager")
	assert.Contains(t, out.String(), "Object list --- (2)")

	requireOptErr(t, exec(t, sh, "MTPrint now"), mtcmd.OptExtra, "now")
}

func TestExec_NotReady(t *testing.T) {
	h, err := mtest.New()
	require.NoError(t, err)
	sh := mtcmd.New(h, &bytes.Buffer{})

	err = exec(t, sh, "mtn 1")
	require.ErrorIs(t, err, mtest.ErrNotReady)
	require.NoError(t, exec(t, sh, "mtr"))
	require.NoError(t, exec(t, sh, "mtn 1"))
}

func TestExec_Help(t *testing.T) {
	sh, _, out := newShell(t)

	require.NoError(t, exec(t, sh, "help"))
	assert.Contains(t, out.String(), "MTReset:       (memory test) reset memory manager")
	assert.Contains(t, out.String(), "MTDelete:      (memory test) delete objects")

	out.Reset()
	require.NoError(t, exec(t, sh, "hel mtn"))
	assert.Equal(t, "Usage: MTNew <(size_t numObjects)> [-Array (size_t arraySize)]\n", out.String())

	err := exec(t, sh, "help zzz")
	requireOptErr(t, err, mtcmd.OptIllegal, "zzz")
	require.ErrorIs(t, err, mtcmd.ErrUnknownCommand)
	requireOptErr(t, exec(t, sh, "help a b"), mtcmd.OptExtra, "b")
}

func TestExec_Quit(t *testing.T) {
	sh, _, _ := newShell(t)
	st, err := sh.Exec("q")
	require.NoError(t, err)
	assert.Equal(t, mtcmd.Quit, st)
	assert.True(t, sh.Stopped())
	require.NoError(t, sh.Run(t.Context(), strings.NewReader("mtn 3\n"), false))
	assert.Equal(t, 0, sh.Harness().ObjListSize(), "stopped shell runs nothing")

	st, err = sh.Exec("quit now")
	requireOptErr(t, err, mtcmd.OptExtra, "now")
	assert.Equal(t, mtcmd.Error, st)
}

func TestRun_Script(t *testing.T) {
	h := testutil.SetupHarness(t, 4096)
	var out, errOut bytes.Buffer
	sh := mtcmd.New(h, &out, mtcmd.WithErrorOutput(&errOut))

	script := strings.Join([]string{
		"// allocate some objects",
		"mtn 10",
		"",
		"mtn 3 -a 4",
		"mtd -i 99",
		"mtd -r 4",
		"bogus",
		"q",
		"mtn 100",
	}, "\n")
	require.NoError(t, sh.Run(t.Context(), strings.NewReader(script), true))

	assert.Equal(t, 6, h.ObjListSize())
	assert.Equal(t, 3, h.ArrListSize())
	assert.Contains(t, out.String(), "mtest> mtn 10\n")
	assert.NotContains(t, out.String(), "mtest> mtn 100")
	assert.NotContains(t, out.String(), "allocate some objects")
	assert.Equal(t, 2, strings.Count(errOut.String(), "Error: "))
	assert.Contains(t, errOut.String(), "Error: Illegal option!! (99)")

	st := sh.Stats()
	assert.Equal(t, 5, st.Commands)
	assert.Equal(t, 2, st.Errors)
}

func TestRun_Canceled(t *testing.T) {
	sh, h, _ := newShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sh.Run(ctx, strings.NewReader("mtn 1\n"), false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.ObjListSize())
}
