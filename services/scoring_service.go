package services

import (
	"errors"
	"math"

	"research-proposal-api/models"

	"github.com/go-playground/validator/v10"
)

// ErrNoEvaluations is returned when an aggregate is requested for a
// proposal nobody has evaluated yet.
var ErrNoEvaluations = errors.New("proposal has no evaluations")

// Criterion is one weighted rubric dimension on the evaluation form.
type Criterion struct {
	ID     int     `json:"id"`
	Field  string  `json:"field"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// EvaluationCriteria is the fixed rubric. Weights sum to 100, so a raw
// score of 100 on every criterion totals exactly 100.00.
var EvaluationCriteria = []Criterion{
	{1, "nilaiKualitasDanKebaruan", "Kualitas dan relevansi masalah penelitian, tujuan, dan kebaruan", 25},
	{2, "nilaiRoadmap", "Kesesuaian dengan Roadmap Penelitian Fakultas", 15},
	{3, "nilaiTinjauanPustaka", "Relevansi Tinjauan Pustaka", 10},
	{4, "nilaiKemutakhiranSumber", "Kemutakhiran dan sumber primer tinjauan pustaka", 5},
	{5, "nilaiMetodologi", "Kesesuaian metodologi dengan masalah penelitian", 20},
	{6, "nilaiTargetLuaran", "Kewajaran target capaian luaran", 10},
	{7, "nilaiKompetensiDanTugas", "Kesesuaian kompetensi tim peneliti dan pembagian tugas", 10},
	{8, "nilaiPenulisan", "Kesesuaian penulisan proposal dengan panduan", 5},
}

// EvaluationScores carries the eight raw criterion scores of one review.
// Every score is a 0-100 number.
type EvaluationScores struct {
	NilaiKualitasDanKebaruan float64 `json:"nilaiKualitasDanKebaruan" validate:"min=0,max=100"`
	NilaiRoadmap             float64 `json:"nilaiRoadmap" validate:"min=0,max=100"`
	NilaiTinjauanPustaka     float64 `json:"nilaiTinjauanPustaka" validate:"min=0,max=100"`
	NilaiKemutakhiranSumber  float64 `json:"nilaiKemutakhiranSumber" validate:"min=0,max=100"`
	NilaiMetodologi          float64 `json:"nilaiMetodologi" validate:"min=0,max=100"`
	NilaiTargetLuaran        float64 `json:"nilaiTargetLuaran" validate:"min=0,max=100"`
	NilaiKompetensiDanTugas  float64 `json:"nilaiKompetensiDanTugas" validate:"min=0,max=100"`
	NilaiPenulisan           float64 `json:"nilaiPenulisan" validate:"min=0,max=100"`
}

var scoreValidator = validator.New()

// Validate checks every criterion score is within [0,100].
func (s EvaluationScores) Validate() error {
	return scoreValidator.Struct(s)
}

// raw returns the scores in criterion order.
func (s EvaluationScores) raw() []float64 {
	return []float64{
		s.NilaiKualitasDanKebaruan,
		s.NilaiRoadmap,
		s.NilaiTinjauanPustaka,
		s.NilaiKemutakhiranSumber,
		s.NilaiMetodologi,
		s.NilaiTargetLuaran,
		s.NilaiKompetensiDanTugas,
		s.NilaiPenulisan,
	}
}

// WeightedScore converts a raw 0-100 score into its weighted contribution.
// weight is a percentage, so WeightedScore(100, w) == w.
func WeightedScore(raw, weight float64) float64 {
	return raw * weight / 100
}

// TotalScore is the weighted sum over all eight criteria, rounded to two
// decimals. This must agree with the stored total_nilai digit for digit.
func TotalScore(s EvaluationScores) float64 {
	var total float64
	for i, raw := range s.raw() {
		total += WeightedScore(raw, EvaluationCriteria[i].Weight)
	}
	return Round2(total)
}

// AverageTotal is the arithmetic mean of the evaluations' totals, rounded
// to two decimals. ErrNoEvaluations rather than a division by zero.
func AverageTotal(evaluations []models.ProposalEvaluation) (float64, error) {
	if len(evaluations) == 0 {
		return 0, ErrNoEvaluations
	}
	var sum float64
	for _, e := range evaluations {
		sum += e.TotalNilai
	}
	return Round2(sum / float64(len(evaluations))), nil
}

// Round2 rounds half away from zero to two decimal places, matching the
// display rounding the evaluation form applies.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
