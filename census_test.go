package bundler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	fileutil "github.com/projectdiscovery/utils/file"
	"github.com/stretchr/testify/require"
)

func TestCensusExecuteWithWriter(t *testing.T) {
	e := newFreeEngine(t, &Options{PrefixDepth: 2, Workers: 2})
	dir := t.TempDir()
	c, err := NewCensus(e, &CensusOptions{PartsDir: dir})
	require.Nil(t, err)

	var buff bytes.Buffer
	require.Nil(t, c.ExecuteWithWriter(context.Background(), 4, &buff))
	expected := "word\n" + strings.Join(freeCensus, "\n") + "\n"
	require.Equal(t, expected, buff.String())

	require.True(t, fileutil.FileExists(filepath.Join(dir, "word_0.csv")))
	require.True(t, fileutil.FileExists(filepath.Join(dir, "word_prefixes.csv")))
	require.True(t, fileutil.FileExists(filepath.Join(dir, "word_1.csv")))
}

func TestCensusLimit(t *testing.T) {
	e := newFreeEngine(t, &Options{PrefixDepth: 2})
	c, err := NewCensus(e, &CensusOptions{Limit: 3})
	require.Nil(t, err)

	var buff bytes.Buffer
	require.Nil(t, c.ExecuteWithWriter(context.Background(), 4, &buff))
	require.Equal(t, "word\na\nb\naa\n", buff.String())
}

func TestCensusExecute(t *testing.T) {
	e := newFreeEngine(t, &Options{PrefixDepth: 1, Workers: 3})
	c, err := NewCensus(e, nil)
	require.Nil(t, err)

	results, err := c.Execute(context.Background(), 4)
	require.Nil(t, err)
	var got []string
	for word := range results {
		got = append(got, word)
	}
	require.Nil(t, c.Err())
	require.ElementsMatch(t, freeCensus, got)
}

func TestCensusMasterPrefix(t *testing.T) {
	e := newFreeEngine(t, &Options{PrefixDepth: 2, MasterPrefix: "ab"})
	c, err := NewCensus(e, nil)
	require.Nil(t, err)

	var buff bytes.Buffer
	require.Nil(t, c.ExecuteWithWriter(context.Background(), 4, &buff))
	require.Equal(t, "word\nab\nabb\nabab\nabaB\nabAb\nabAB\nabbb\n", buff.String())

	_, _, err = c.Prefixes(2)
	require.NotNil(t, err)
}

func TestCensusErrors(t *testing.T) {
	_, err := NewCensus(nil, nil)
	require.NotNil(t, err)

	c, err := NewCensus(newFreeEngine(t, nil), nil)
	require.Nil(t, err)
	require.NotNil(t, c.ExecuteWithWriter(context.Background(), 4, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.ExecuteWithWriter(ctx, 4, &bytes.Buffer{})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestCensusResume(t *testing.T) {
	e := newFreeEngine(t, &Options{PrefixDepth: 2, Workers: 2})
	dir := t.TempDir()
	run := func() (string, *Census, error) {
		c, err := NewCensus(e, &CensusOptions{PartsDir: dir})
		require.Nil(t, err)
		var buff bytes.Buffer
		err = c.ExecuteWithWriter(context.Background(), 4, &buff)
		return buff.String(), c, err
	}

	first, c, err := run()
	require.Nil(t, err)
	require.Equal(t, 0, c.Resumed())
	parts, err := filepath.Glob(filepath.Join(dir, "word_*.csv"))
	require.Nil(t, err)
	require.Greater(t, len(parts), 3)

	second, c, err := run()
	require.Nil(t, err)
	require.Equal(t, first, second)
	require.Equal(t, len(parts), c.Resumed())

	// saved parts are trusted, missing ones are enumerated again
	require.Nil(t, os.WriteFile(filepath.Join(dir, "word_1.csv"), []byte("word\nBBBB\n"), 0644))
	require.Nil(t, os.Remove(filepath.Join(dir, "word_2.csv")))
	third, c, err := run()
	require.Nil(t, err)
	require.Contains(t, third, "\nBBBB\n")
	require.Equal(t, len(parts)-1, c.Resumed())
	require.True(t, fileutil.FileExists(filepath.Join(dir, "word_2.csv")))

	require.Nil(t, os.WriteFile(filepath.Join(dir, "word_1.csv"), []byte("word\nzz\n"), 0644))
	_, _, err = run()
	require.NotNil(t, err)
}
