package workouts

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedOverride = errors.New("malformed override record")

// overrideBlob is the stored shape of an override. The version lives next to it, not inside.
type overrideBlob struct {
	Completed map[string]bool `json:"completed"`
	Extras    []ExtraExercise `json:"extras"`
}

func EncodeOverride(record *OverrideRecord) ([]byte, error) {
	if record == nil {
		record = NewOverrideRecord()
	}
	blob := overrideBlob{
		Completed: record.Completed,
		Extras:    record.Extras,
	}
	if blob.Completed == nil {
		blob.Completed = map[string]bool{}
	}
	if blob.Extras == nil {
		blob.Extras = []ExtraExercise{}
	}
	return json.Marshal(blob)
}

// DecodeOverride parses a stored override. Only id and name are required on extras,
// and extra ids must be unique within the record.
func DecodeOverride(data []byte) (*OverrideRecord, error) {
	var blob overrideBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedOverride, err)
	}

	record := NewOverrideRecord()
	for id, done := range blob.Completed {
		record.Completed[id] = done
	}

	seen := make(map[string]bool, len(blob.Extras))
	for i, ex := range blob.Extras {
		if ex.ID == "" || ex.Name == "" {
			return nil, fmt.Errorf("%w: extra #%d missing id or name", ErrMalformedOverride, i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("%w: duplicate extra id %s", ErrMalformedOverride, ex.ID)
		}
		seen[ex.ID] = true
		record.Extras = append(record.Extras, ex)
	}

	return record, nil
}

// DecodeOverrideOrEmpty never fails: malformed data degrades to an empty record
// that keeps the stored version, so that the next write can replace it.
func DecodeOverrideOrEmpty(data []byte, version int) (*OverrideRecord, error) {
	record, err := DecodeOverride(data)
	if err != nil {
		record = NewOverrideRecord()
	}
	record.Version = version
	return record, err
}

func EncodeWeekPlan(plan WeekPlan) ([]byte, error) {
	return json.Marshal(plan.Clone())
}

// DecodeWeekPlan parses a stored week plan. Unknown weekday keys and exercises without
// id or name are dropped.
func DecodeWeekPlan(data []byte) (WeekPlan, error) {
	var raw map[string][]TemplateExercise
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode week plan: %w", err)
	}

	plan := make(WeekPlan, len(Weekdays))
	for _, slot := range Weekdays {
		plan[slot] = []TemplateExercise{}
	}
	for key, list := range raw {
		slot, err := ParseWeekdaySlot(key)
		if err != nil {
			continue
		}
		for _, ex := range list {
			if ex.ID == "" || ex.Name == "" {
				continue
			}
			plan[slot] = append(plan[slot], ex)
		}
	}
	return plan, nil
}
