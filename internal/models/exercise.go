package models

import "fmt"

// Equipment categories used by the exercise catalog.
const (
	EquipmentBarbell    = "barbell"
	EquipmentDumbbell   = "dumbbell"
	EquipmentCable      = "cable"
	EquipmentMachine    = "machine"
	EquipmentKettlebell = "kettlebell"
	EquipmentBodyweight = "bodyweight"
)

// MuscleEngagement is one muscle's share of an exercise's training stimulus.
// Percentages across an exercise sum to 100.
type MuscleEngagement struct {
	Muscle     string `json:"muscle"`
	Percentage int    `json:"percentage"`
}

// Exercise is immutable catalog reference data. Seeded by migration,
// read-only at runtime.
type Exercise struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Equipment       string             `json:"equipment"`
	MovementPattern string             `json:"movement_pattern"`
	Difficulty      string             `json:"difficulty"`
	Muscles         []MuscleEngagement `json:"muscles"`
}

// IsBodyweight reports whether set weight should default to the lifter's
// body weight when not supplied.
func (e Exercise) IsBodyweight() bool {
	return e.Equipment == EquipmentBodyweight
}

// Validate checks the engagement percentages sum to the normalized scale.
func (e Exercise) Validate() error {
	if e.ID == "" || e.Name == "" {
		return fmt.Errorf("exercise %q: id and name are required", e.ID)
	}
	var sum int
	for _, m := range e.Muscles {
		if m.Percentage < 0 || m.Percentage > 100 {
			return fmt.Errorf("exercise %q: engagement for %s out of range: %d", e.ID, m.Muscle, m.Percentage)
		}
		sum += m.Percentage
	}
	if len(e.Muscles) > 0 && sum != 100 {
		return fmt.Errorf("exercise %q: engagement percentages sum to %d, want 100", e.ID, sum)
	}
	return nil
}
