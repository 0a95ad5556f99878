package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlan_Terms(t *testing.T) {
	monthly, ok := PlanMonthly.Terms()
	assert.True(t, ok)
	assert.Equal(t, int64(1000), monthly.Amount)
	assert.Equal(t, 30, monthly.DurationDays)

	yearly, ok := PlanYearly.Terms()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), yearly.Amount)
	assert.Equal(t, 365, yearly.DurationDays)

	_, ok = Plan("weekly").Terms()
	assert.False(t, ok)
}

func TestPlan_Duration(t *testing.T) {
	assert.Equal(t, 30*24*time.Hour, PlanMonthly.Duration())
	assert.Equal(t, 365*24*time.Hour, PlanYearly.Duration())
	assert.Zero(t, Plan("premium").Duration())
}

func TestRequestKind_Valid(t *testing.T) {
	for _, k := range []RequestKind{
		RequestQuestionGeneration,
		RequestSummarization,
		RequestQuestionAnswering,
		RequestStudyPlanGeneration,
	} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, RequestKind("translation").Valid())
	assert.False(t, RequestKind("").Valid())
}
