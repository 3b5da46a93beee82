package config_test

import (
	"testing"

	"github.com/katalvlaran/cellflow/config"
	"github.com/katalvlaran/cellflow/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
markov:
  method: kernel
  neighbors: 30
  strategy: bruteforce
  density_epsilon: 0.5
  adaptive: true
  sample_fraction: 0.5
  workers: 2
  degenerate: self_loop
topology:
  tolerance: 0.001
  workers: 3
  seed: 7
  domain:
    - {lo: -2, hi: 2}
    - {lo: 0, hi: 1}
  separatrix:
    horizon: 10
`

func TestParse_Sample(t *testing.T) {
	c, err := config.Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "kernel", c.Markov.Method)
	assert.Equal(t, 30, c.Markov.Neighbors)
	assert.Equal(t, 0.5, c.Markov.SampleFraction)
	assert.Equal(t, config.Default().Markov.QPMaxIter, c.Markov.QPMaxIter, "unset keys keep defaults")

	opts := c.MarkovOptions(nil)
	assert.Len(t, opts, 12)

	o := c.TopologyOptions(nil)
	assert.Equal(t, 0.001, o.Tolerance)
	assert.Equal(t, 3, o.Workers)
	assert.Equal(t, uint64(7), o.Seed)
	assert.Equal(t, topology.Domain{{Lo: -2, Hi: 2}, {Lo: 0, Hi: 1}}, o.Domain)
	assert.Equal(t, 10.0, o.Separatrix.Horizon)
	assert.Equal(t, topology.DefaultSamples, o.Separatrix.Samples)
}

func TestParse_Empty(t *testing.T) {
	c, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
	assert.Len(t, c.MarkovOptions(nil), 8)
	assert.Zero(t, c.Markov.SampleFraction, "neighbourhoods are not thinned by default")
	assert.Empty(t, c.TopologyOptions(nil).Domain)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"method":       "markov: {method: lstsq}",
		"neighbors":    "markov: {neighbors: 0}",
		"fraction":     "markov: {sample_fraction: 1.5}",
		"negative":     "markov: {sample_fraction: -0.5}",
		"interval":     "topology: {domain: [{lo: 1, hi: 0}]}",
		"samples":      "topology: {separatrix: {samples: 1}}",
		"unknown key":  "markov: {neighbours: 3}",
		"syntax error": "markov: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(doc))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}
