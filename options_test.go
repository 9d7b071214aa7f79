package agimussot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longhathuc/agimus-sot/feature"
)

func TestOptionsDefaults(t *testing.T) {
	opts := &Options{}
	require.NoError(t, opts.Validate())

	assert.Equal(t, feature.DefaultNearGain, opts.NearGain)
	assert.Equal(t, feature.DefaultFarGain, opts.FarGain)
	assert.Equal(t, feature.DefaultNearError, opts.NearError)
	assert.Equal(t, feature.DefaultFarError, opts.FarError)
	assert.Equal(t, EstimationStatic, opts.Estimation)
	assert.NotNil(t, opts.Logger)
}

func TestOptionsKeepsExplicitValues(t *testing.T) {
	opts := &Options{NearGain: 0.5, FarGain: 0.2, NearError: 0.1, FarError: 2.0}
	require.NoError(t, opts.Validate())

	assert.Equal(t, 0.5, opts.NearGain)
	assert.Equal(t, 0.2, opts.FarGain)
	assert.Equal(t, 0.1, opts.NearError)
	assert.Equal(t, 2.0, opts.FarError)
}

func TestOptionsRejectsBadThresholds(t *testing.T) {
	opts := &Options{NearError: 1.0, FarError: 0.3}
	assert.Error(t, opts.Validate())
}

func TestOptionsRejectsUnknownEstimation(t *testing.T) {
	opts := &Options{Estimation: EstimationPolicy("telepathy")}
	err := opts.Validate()
	assert.True(t, errors.Is(err, ErrUnknownEstimation))
}
