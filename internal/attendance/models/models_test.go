package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
)

func kindPtr(k Kind) *Kind { return &k }

// TestCanFollowTable enumerates every combination of latest and requested
// kind, plus the no-events-yet case for each requested kind.
func TestCanFollowTable(t *testing.T) {
	legal := map[string]bool{
		"none->clock_in":         true,
		"clock_out->clock_in":    true,
		"clock_in->break_start":  true,
		"clock_in->clock_out":    true,
		"break_start->break_end": true,
		"break_end->break_start": true,
		"break_end->clock_out":   true,
	}

	latests := []*Kind{nil, kindPtr(KindClockIn), kindPtr(KindBreakStart), kindPtr(KindBreakEnd), kindPtr(KindClockOut)}
	for _, latest := range latests {
		latestName := "none"
		if latest != nil {
			latestName = latest.String()
		}
		for _, requested := range Kinds() {
			name := latestName + "->" + requested.String()
			t.Run(name, func(t *testing.T) {
				assert.Equal(t, legal[name], requested.CanFollow(latest))
			})
		}
	}
}

func TestCanFollowUnknownKinds(t *testing.T) {
	bogus := Kind("lunch")
	assert.False(t, bogus.CanFollow(nil))
	assert.False(t, KindClockIn.CanFollow(&bogus))
}

func TestAllowedNext(t *testing.T) {
	assert.Equal(t, []Kind{KindClockIn}, AllowedNext(nil))
	assert.Equal(t, []Kind{KindClockIn}, AllowedNext(kindPtr(KindClockOut)))
	assert.Equal(t, []Kind{KindBreakStart, KindClockOut}, AllowedNext(kindPtr(KindClockIn)))
	assert.Equal(t, []Kind{KindBreakEnd}, AllowedNext(kindPtr(KindBreakStart)))
	assert.Equal(t, []Kind{KindBreakStart, KindClockOut}, AllowedNext(kindPtr(KindBreakEnd)))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateIdle, StateOf(nil))
	assert.Equal(t, StateIdle, StateOf(kindPtr(KindClockOut)))
	assert.Equal(t, StateWorking, StateOf(kindPtr(KindClockIn)))
	assert.Equal(t, StateWorking, StateOf(kindPtr(KindBreakEnd)))
	assert.Equal(t, StateOnBreak, StateOf(kindPtr(KindBreakStart)))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("entrada")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestReject(t *testing.T) {
	err := Reject(kindPtr(KindBreakStart), KindClockOut)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	var rejected *RejectedTransition
	require.True(t, errors.As(err, &rejected))
	require.NotNil(t, rejected.Latest)
	assert.Equal(t, KindBreakStart, *rejected.Latest)
	assert.Equal(t, KindClockOut, rejected.Requested)

	noShift := Reject(nil, KindBreakEnd)
	assert.Contains(t, noShift.Error(), "no shift is open")
}
