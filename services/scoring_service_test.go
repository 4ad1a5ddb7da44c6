package services

import (
	"errors"
	"testing"

	"research-proposal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluationCriteriaWeightsSumToOneHundred(t *testing.T) {
	var sum float64
	for _, c := range EvaluationCriteria {
		assert.Greater(t, c.Weight, 0.0, "criterion %d has no weight", c.ID)
		sum += c.Weight
	}
	assert.Equal(t, 100.0, sum)
}

func TestWeightedScoreFullMarksEqualsWeight(t *testing.T) {
	for _, c := range EvaluationCriteria {
		assert.Equal(t, c.Weight, WeightedScore(100, c.Weight), "criterion %d", c.ID)
	}
	assert.Equal(t, 0.0, WeightedScore(0, 25))
	assert.Equal(t, 12.5, WeightedScore(50, 25))
}

func TestTotalScorePerfectRubric(t *testing.T) {
	all100 := EvaluationScores{
		NilaiKualitasDanKebaruan: 100,
		NilaiRoadmap:             100,
		NilaiTinjauanPustaka:     100,
		NilaiKemutakhiranSumber:  100,
		NilaiMetodologi:          100,
		NilaiTargetLuaran:        100,
		NilaiKompetensiDanTugas:  100,
		NilaiPenulisan:           100,
	}
	assert.Equal(t, 100.0, TotalScore(all100))
	assert.Equal(t, 0.0, TotalScore(EvaluationScores{}))
}

func TestTotalScoreWeighsEachCriterion(t *testing.T) {
	// 100 on the heaviest criterion (weight 25) alone contributes 25.
	only := EvaluationScores{NilaiKualitasDanKebaruan: 100}
	assert.Equal(t, 25.0, TotalScore(only))

	// 80 everywhere scores 80 regardless of weights.
	uniform := EvaluationScores{
		NilaiKualitasDanKebaruan: 80,
		NilaiRoadmap:             80,
		NilaiTinjauanPustaka:     80,
		NilaiKemutakhiranSumber:  80,
		NilaiMetodologi:          80,
		NilaiTargetLuaran:        80,
		NilaiKompetensiDanTugas:  80,
		NilaiPenulisan:           80,
	}
	assert.Equal(t, 80.0, TotalScore(uniform))
}

func TestAverageTotal(t *testing.T) {
	evals := []models.ProposalEvaluation{
		{TotalNilai: 80},
		{TotalNilai: 60},
	}
	avg, err := AverageTotal(evals)
	require.NoError(t, err)
	assert.Equal(t, 70.0, avg)

	single, err := AverageTotal([]models.ProposalEvaluation{{TotalNilai: 72.5}})
	require.NoError(t, err)
	assert.Equal(t, 72.5, single)
}

func TestAverageTotalEmpty(t *testing.T) {
	_, err := AverageTotal(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEvaluations))
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 72.13, Round2(72.125))
	assert.Equal(t, -72.13, Round2(-72.125))
	assert.Equal(t, 70.0, Round2(70))
	assert.Equal(t, 0.25, Round2(0.25))
}

func TestEvaluationScoresValidate(t *testing.T) {
	valid := EvaluationScores{
		NilaiKualitasDanKebaruan: 85,
		NilaiMetodologi:          90,
	}
	require.NoError(t, valid.Validate())

	over := EvaluationScores{NilaiRoadmap: 120}
	assert.Error(t, over.Validate())

	negative := EvaluationScores{NilaiPenulisan: -5}
	assert.Error(t, negative.Validate())
}
