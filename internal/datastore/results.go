package datastore

import (
	"strings"
	"time"

	"github.com/tsuchida/bunrui-go/internal/errors"
	"github.com/tsuchida/bunrui-go/internal/locale"
	"gorm.io/gorm"
)

// Save inserts a new analysis result row. The write-time invariants are
// enforced here: a non-empty label and a score inside [0,100].
func (ds *DataStore) Save(result *AnalysisResult) (err error) {
	start := time.Now()
	defer func() { recordOp("save", start, err) }()

	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryState).
			Build()
	}

	if result.PredictionLabel == "" {
		return errors.Newf("prediction label must not be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if result.PredictionScore < 0 || result.PredictionScore > 100 {
		return errors.Newf("prediction score %.2f is outside [0,100]", result.PredictionScore).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("prediction_score", result.PredictionScore).
			Build()
	}

	if err := ds.DB.Create(result).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_result").
			Build()
	}

	ds.recordRowCount()
	return nil
}

// Get retrieves a single analysis result by id.
func (ds *DataStore) Get(id uint) (result AnalysisResult, err error) {
	start := time.Now()
	defer func() { recordOp("get", start, err) }()

	if err := ds.DB.First(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AnalysisResult{}, errors.Newf("analysis result %d not found", id).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("result_id", id).
				Build()
		}
		return AnalysisResult{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_result").
			Build()
	}
	return result, nil
}

// Delete removes an analysis result row. Deleting an id that does not exist
// is a CategoryNotFound error. Blob removal is the caller's second step,
// the two are deliberately not one transaction.
func (ds *DataStore) Delete(id uint) (err error) {
	start := time.Now()
	defer func() { recordOp("delete", start, err) }()

	tx := ds.DB.Delete(&AnalysisResult{}, id)
	if tx.Error != nil {
		return errors.New(tx.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "delete_result").
			Context("result_id", id).
			Build()
	}
	if tx.RowsAffected == 0 {
		return errors.Newf("analysis result %d not found", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("result_id", id).
			Build()
	}
	ds.recordRowCount()
	return nil
}

// searchScope narrows a query to labels containing the search string,
// case-insensitively. The query is NFC-normalized first so composed and
// decomposed Japanese input match.
func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		normalized := locale.NormalizeQuery(search)
		if normalized == "" {
			return db
		}
		pattern := "%" + strings.ToLower(normalized) + "%"
		return db.Where("LOWER(prediction_label) LIKE ?", pattern)
	}
}

// Count returns the number of results matching the search filter.
func (ds *DataStore) Count(search string) (int64, error) {
	var total int64
	if err := ds.DB.Model(&AnalysisResult{}).Scopes(searchScope(search)).Count(&total).Error; err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_results").
			Build()
	}
	return total, nil
}

// List returns one page of analysis results in descending creation order.
// The requested page is clamped to the valid range instead of erroring:
// pages below 1 serve the first page, pages beyond the end serve the last.
func (ds *DataStore) List(page, pageSize int, search string) (lp ListPage, err error) {
	start := time.Now()
	defer func() { recordOp("list", start, err) }()

	if pageSize <= 0 {
		pageSize = 10
	}

	total, err := ds.Count(search)
	if err != nil {
		return ListPage{}, err
	}

	totalPages := TotalPages(total, pageSize)
	page = ClampPage(page, totalPages)

	var results []AnalysisResult
	err = ds.DB.Scopes(searchScope(search)).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&results).Error
	if err != nil {
		return ListPage{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "list_results").
			Context("page", page).
			Build()
	}

	return ListPage{
		Results:    results,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   pageSize,
	}, nil
}
