package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/artquizbot/pkg/models"
)

// PlanRepository handles database operations for shared daily plans
type PlanRepository struct{}

// NewPlanRepository creates a new repository instance
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{}
}

// Get returns the plan stored for a day, or nil when none exists yet
func (r *PlanRepository) Get(day string) (*models.DailyPlan, error) {
	var row struct {
		Day       string `db:"day"`
		SlotsJSON string `db:"slots_json"`
	}
	err := DB.Get(&row, "SELECT day, slots_json FROM daily_plans WHERE day = $1", day)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily plan: %v", err)
	}

	var slots []models.Slot
	if err := json.Unmarshal([]byte(row.SlotsJSON), &slots); err != nil {
		return nil, fmt.Errorf("failed to decode plan for day %s: %v", day, err)
	}
	return &models.DailyPlan{Day: row.Day, Slots: slots}, nil
}

// InsertIfAbsent stores a freshly generated plan unless one already exists
// for the day. Returns true when this writer won the race; a losing writer
// should discard its plan and re-read the stored one.
func (r *PlanRepository) InsertIfAbsent(day string, slots []models.Slot) (bool, error) {
	encoded, err := json.Marshal(slots)
	if err != nil {
		return false, fmt.Errorf("failed to encode plan slots: %v", err)
	}

	result, err := DB.Exec(
		`INSERT INTO daily_plans (day, slots_json) VALUES ($1, $2)
		 ON CONFLICT (day) DO NOTHING`,
		day, string(encoded),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert daily plan: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}
	return rows > 0, nil
}
