package attributes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownAttribute(t *testing.T) {
	c := NewCatalog(StaticSource{Descriptors: []Descriptor{
		{Name: "rtp.mos", Type: TypeFloat},
		{Name: "sip.caller", Type: TypeString, Options: []string{"a", "b"}},
	}})

	d, ok, err := c.Lookup(context.Background(), "rtp.mos")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TypeFloat, d.Type)

	d, ok, err = c.Lookup(context.Background(), "sip.caller")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, d.Options)
}

func TestLookupUnknownAttribute(t *testing.T) {
	c := NewCatalog(StaticSource{Descriptors: nil})
	_, ok, err := c.Lookup(context.Background(), "rtp.mos")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatalogPopulatesOnce(t *testing.T) {
	calls := 0
	src := countingSource{count: &calls, descriptors: []Descriptor{{Name: "rtp.mos", Type: TypeFloat}}}
	c := NewCatalog(src)

	_, _, _ = c.Lookup(context.Background(), "rtp.mos")
	_, _, _ = c.Lookup(context.Background(), "rtp.mos")
	_, _, _ = c.Lookup(context.Background(), "rtp.mos")

	require.Equal(t, 1, calls)
}

func TestRefreshRepopulates(t *testing.T) {
	calls := 0
	src := countingSource{count: &calls, descriptors: []Descriptor{{Name: "rtp.mos", Type: TypeFloat}}}
	c := NewCatalog(src)

	_, _, _ = c.Lookup(context.Background(), "rtp.mos")
	c.Refresh()
	_, _, _ = c.Lookup(context.Background(), "rtp.mos")

	require.Equal(t, 2, calls)
}

func TestLookupPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCatalog(failingSource{err: boom})
	_, _, err := c.Lookup(context.Background(), "rtp.mos")
	require.ErrorIs(t, err, boom)
}

type countingSource struct {
	count       *int
	descriptors []Descriptor
}

func (s countingSource) Fetch(ctx context.Context) ([]Descriptor, error) {
	*s.count++
	return s.descriptors, nil
}

type failingSource struct{ err error }

func (s failingSource) Fetch(ctx context.Context) ([]Descriptor, error) {
	return nil, s.err
}
