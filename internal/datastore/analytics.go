package datastore

import (
	"math"
	"time"

	"github.com/tsuchida/bunrui-go/internal/errors"
)

// LabelCount is one entry of the most-detected-labels ranking.
type LabelCount struct {
	PredictionLabel string `json:"prediction_label"`
	Count           int64  `json:"count"`
}

// Statistics is the aggregate projection served by the statistics endpoint.
type Statistics struct {
	TotalAnalyses     int64        `json:"total_analyses"`
	AverageConfidence float64      `json:"average_confidence"`
	TopLabels         []LabelCount `json:"top_labels"`
	RecentCount       int64        `json:"recent_count"`
}

// topLabelsLimit bounds the most-detected-labels ranking.
const topLabelsLimit = 5

// recentWindow is the lookback used for the recent analyses count.
const recentWindow = 24 * time.Hour

// Statistics computes aggregate statistics over all stored results: total
// count, average confidence rounded to 2 decimals, the top labels by count
// and the number of analyses in the last 24 hours.
func (ds *DataStore) Statistics() (stats Statistics, err error) {
	start := time.Now()
	defer func() { recordOp("statistics", start, err) }()

	if err := ds.DB.Model(&AnalysisResult{}).Count(&stats.TotalAnalyses).Error; err != nil {
		return Statistics{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_total").
			Build()
	}

	if stats.TotalAnalyses > 0 {
		var avg float64
		err := ds.DB.Model(&AnalysisResult{}).
			Select("AVG(prediction_score)").
			Scan(&avg).Error
		if err != nil {
			return Statistics{}, errors.New(err).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("operation", "average_score").
				Build()
		}
		stats.AverageConfidence = math.Round(avg*100) / 100
	}

	err = ds.DB.Model(&AnalysisResult{}).
		Select("prediction_label, COUNT(*) as count").
		Group("prediction_label").
		Order("count DESC").
		Limit(topLabelsLimit).
		Scan(&stats.TopLabels).Error
	if err != nil {
		return Statistics{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "top_labels").
			Build()
	}

	cutoff := time.Now().Add(-recentWindow)
	err = ds.DB.Model(&AnalysisResult{}).
		Where("created_at >= ?", cutoff).
		Count(&stats.RecentCount).Error
	if err != nil {
		return Statistics{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "recent_count").
			Build()
	}

	if m := getMetrics(); m != nil {
		m.SetResultRows(stats.TotalAnalyses)
	}
	return stats, nil
}
