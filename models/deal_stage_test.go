package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDealStageLabel(t *testing.T) {
	assert.Equal(t, "PTP", DealStageLabel("23"))
	assert.Equal(t, "Account closed", DealStageLabel("45"))
	assert.Equal(t, "Introduction Call", DealStageLabel("2"))
	assert.Equal(t, "On Hold", DealStageLabel("27"))

	for _, code := range []string{"", "6", "99", "abc", "-1"} {
		assert.NotPanics(t, func() { DealStageLabel(code) })
		assert.Equal(t, UnknownDealStageLabel, DealStageLabel(code), "code %q", code)
	}
}

func TestDealStages_UniqueCodes(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range DealStages {
		assert.False(t, seen[s.Code], "duplicate code %s", s.Code)
		seen[s.Code] = true
		assert.True(t, IsKnownDealStage(s.Code))
	}
	assert.False(t, IsKnownDealStage("6"))
}

func TestFollowUpHorizon(t *testing.T) {
	tests := []struct {
		code    string
		want    time.Duration
		limited bool
	}{
		{"23", 30 * 24 * time.Hour, true},
		{"7", 30 * 24 * time.Hour, true},
		{"8", 30 * 24 * time.Hour, true},
		{"45", 0, false},
		{"2", 7 * 24 * time.Hour, true},
		{"unknown", 7 * 24 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, limited := FollowUpHorizon(tt.code)
			assert.Equal(t, tt.limited, limited)
			assert.Equal(t, tt.want, got)
		})
	}
}
