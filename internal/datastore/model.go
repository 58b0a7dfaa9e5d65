package datastore

import (
	"fmt"
	"path"
	"time"
)

// Confidence level bands for a prediction score in [0,100].
const (
	ConfidenceVeryHigh = "very_high"
	ConfidenceHigh     = "high"
	ConfidenceMedium   = "medium"
	ConfidenceLow      = "low"
)

// AnalysisResult is the single durable entity: one row per successful
// end-to-end analysis. Rows are created once, never mutated in normal
// operation, and destroyed only by explicit user action.
type AnalysisResult struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ImagePath        string    `gorm:"size:255;not null" json:"image_path"`
	OriginalFilename string    `gorm:"size:255" json:"original_filename"`
	PredictionLabel  string    `gorm:"size:255;not null;index" json:"prediction_label"`
	PredictionScore  float64   `gorm:"not null" json:"prediction_score"`
	ModelVersion     string    `gorm:"size:50" json:"model_version"`
	ProcessingTime   float64   `json:"processing_time"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// String returns a human-readable one-line summary of the result.
func (r *AnalysisResult) String() string {
	return fmt.Sprintf("%s (%.2f%%) - %s", r.PredictionLabel, r.PredictionScore,
		r.CreatedAt.Format("2006/01/02 15:04"))
}

// ImageFilename returns the base name of the stored image blob.
func (r *AnalysisResult) ImageFilename() string {
	if r.ImagePath == "" {
		return ""
	}
	return path.Base(r.ImagePath)
}

// FormattedScore renders the confidence with two decimal places.
func (r *AnalysisResult) FormattedScore() string {
	return fmt.Sprintf("%.2f%%", r.PredictionScore)
}

// ConfidenceLevel maps the prediction score to a coarse confidence band.
func (r *AnalysisResult) ConfidenceLevel() string {
	switch {
	case r.PredictionScore >= 90:
		return ConfidenceVeryHigh
	case r.PredictionScore >= 70:
		return ConfidenceHigh
	case r.PredictionScore >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// IsRecent reports whether the result was created within the given number
// of hours.
func (r *AnalysisResult) IsRecent(hours int) bool {
	return time.Since(r.CreatedAt) < time.Duration(hours)*time.Hour
}
