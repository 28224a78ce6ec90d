package binder

import (
	"testing"

	"github.com/aarondl/null/v8"
	boilertypes "github.com/aarondl/sqlboiler/v4/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Profile interface {
	Name() string
	SetName(string)
	Age() int
	SetAge(int)
	Nickname() null.String
	SetNickname(null.String)
	Score() int
}

type Member struct {
	FullName string
	Years    int
	Alias    null.String
	Points   int
}

func newProfileBinder(t *testing.T) *Binder[Profile] {
	t.Helper()
	b, err := build[Profile](t, Member{},
		"p.Name", "m.FullName",
		"p.Age", "m.Years",
		"p.Nickname", "m.Alias",
	)
	require.NoError(t, err)
	return b
}

func TestAdapter_MarshalJSON(t *testing.T) {
	b := newProfileBinder(t)
	a, err := b.MapOne(&Member{FullName: "Marc", Years: 40, Alias: null.StringFrom("7Q5MLV"), Points: 9})
	require.NoError(t, err)

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{
		"Name":     "Marc",
		"Age":      float64(40),
		"Nickname": "7Q5MLV",
	}, got)
}

func TestAdapter_SnapshotNullWhenNothingMapped(t *testing.T) {
	b, err := NewBuilder[Profile]().WithType(Member{}, nil).Build()
	require.NoError(t, err)
	a, err := b.MapOne(&Member{FullName: "x"})
	require.NoError(t, err)

	snap, err := a.Snapshot()
	require.NoError(t, err)
	assert.False(t, snap.Valid)
}

func TestAdapter_SnapshotRestoreNullJSON(t *testing.T) {
	b := newProfileBinder(t)
	from, err := b.MapOne(&Member{FullName: "Alice", Years: 30, Alias: null.StringFrom("al")})
	require.NoError(t, err)

	snap, err := from.Snapshot()
	require.NoError(t, err)
	require.True(t, snap.Valid)

	dst := &Member{Points: 5}
	to, err := b.MapOne(dst)
	require.NoError(t, err)
	require.NoError(t, to.Restore(snap))

	assert.Equal(t, "Alice", dst.FullName)
	assert.Equal(t, 30, dst.Years)
	assert.Equal(t, null.StringFrom("al"), dst.Alias)
	assert.Equal(t, 5, dst.Points)
}

func TestAdapter_RestoreFromBoilerJSON(t *testing.T) {
	b := newProfileBinder(t)
	payload, err := json.Marshal(map[string]any{
		"Name":     "Bob",
		"Age":      51,
		"Nickname": nil,
		"Score":    100, // not writable on the abstraction
		"Unknown":  true,
	})
	require.NoError(t, err)

	dst := &Member{Alias: null.StringFrom("old"), Points: 1}
	a, err := b.MapOne(dst)
	require.NoError(t, err)
	require.NoError(t, a.Restore(boilertypes.JSON(payload)))

	assert.Equal(t, "Bob", dst.FullName)
	assert.Equal(t, 51, dst.Years)
	assert.False(t, dst.Alias.Valid)
	assert.Equal(t, 1, dst.Points)
}

func TestAdapter_RestoreSkipsUnmapped(t *testing.T) {
	b, err := build[Profile](t, Member{}, "p.Name", "m.FullName")
	require.NoError(t, err)

	dst := &Member{}
	a, err := b.MapOne(dst)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(`{"Name":"Carol","Age":3}`), a))
	assert.Equal(t, "Carol", dst.FullName)
	assert.Equal(t, 0, dst.Years)
}

func TestAdapter_RestoreEmptyAndInvalid(t *testing.T) {
	b := newProfileBinder(t)
	dst := &Member{FullName: "keep"}
	a, err := b.MapOne(dst)
	require.NoError(t, err)

	require.NoError(t, a.Restore(null.JSON{}))
	require.NoError(t, a.Restore(boilertypes.JSON(nil)))
	require.NoError(t, a.Restore([]byte{}))
	assert.Equal(t, "keep", dst.FullName)

	assert.Error(t, a.Restore("not json bytes"))
	assert.Error(t, a.Restore([]byte(`{"Name":`)))
	assert.Error(t, a.Restore([]byte(`{"Age":"forty"}`)))
	assert.Equal(t, "keep", dst.FullName)
}

type Pair interface {
	A() string
	SetA(string)
	B() int
	SetB(int)
}

type pairRecord struct {
	A string
	B int
}

func TestAdapter_RestoreFailureLeavesSourceUnchanged(t *testing.T) {
	b, err := build[Pair](t, pairRecord{}, "p.A", "r.A", "p.B", "r.B")
	require.NoError(t, err)

	src := &pairRecord{A: "original", B: 7}
	a, err := b.MapOne(src)
	require.NoError(t, err)

	err = a.Restore([]byte(`{"A":"changed","B":"not-an-int"}`))
	require.Error(t, err)
	assert.Equal(t, pairRecord{A: "original", B: 7}, *src)

	require.NoError(t, a.Restore([]byte(`{"A":"changed","B":8}`)))
	assert.Equal(t, pairRecord{A: "changed", B: 8}, *src)
}

type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) { return nil, assert.AnError }

type Payload interface {
	Body() unencodable
}

type envelope struct {
	Body unencodable
}

func TestAdapter_SnapshotReportsEncodeFailure(t *testing.T) {
	b, err := build[Payload](t, envelope{}, "p.Body", "e.Body")
	require.NoError(t, err)
	a, err := b.MapOne(&envelope{})
	require.NoError(t, err)

	_, err = a.MarshalJSON()
	assert.Error(t, err)

	snap, err := a.Snapshot()
	assert.Error(t, err)
	assert.False(t, snap.Valid)
}
