package postgres

import (
	"encoding/json"
	"time"

	"github.com/taskbuddy/backend/domain"
)

func marshalActivities(activities []domain.Activity) ([]byte, error) {
	if activities == nil {
		activities = []domain.Activity{}
	}
	return json.Marshal(activities)
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
