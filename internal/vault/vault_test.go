package vault_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tacticore/internal/geometry"
	"tacticore/internal/vault"
)

func TestParseBasicLayout(t *testing.T) {
	src := "xxx\nx.x\nxxx"
	v, err := vault.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 3, v.Width)
	require.Equal(t, 3, v.Height)
	require.Equal(t, geometry.Wall, v.At(0, 0))
	require.Equal(t, geometry.Floor, v.At(1, 1))
}

func TestParsePadsShortLinesWithFloor(t *testing.T) {
	src := "xxxxx\nx\nxxxxx"
	v, err := vault.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 5, v.Width)
	require.Equal(t, geometry.Wall, v.At(0, 1))
	require.Equal(t, geometry.Floor, v.At(1, 1))
	require.Equal(t, geometry.Floor, v.At(4, 1))
}

func TestParseExitTile(t *testing.T) {
	src := "xex"
	v, err := vault.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, geometry.Exit, v.At(1, 0))
}

func TestParseRejectsUnknownCharacter(t *testing.T) {
	_, err := vault.Parse(strings.NewReader("x?x"))
	require.Error(t, err)
}

func TestStampOffsetsIntoMap(t *testing.T) {
	src := "xxx\nx.x\nxxx"
	v, err := vault.Parse(strings.NewReader(src))
	require.NoError(t, err)

	m := geometry.NewMap()
	vault.Stamp(m, v, 10, 20)

	require.True(t, m.Passable(11, 21))
	require.False(t, m.Passable(10, 20))
	require.False(t, m.Passable(0, 0))
}
