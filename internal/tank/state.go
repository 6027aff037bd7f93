package tank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"TankSentinel/internal/model"
)

// LoadState reads the tank state from a JSON file. Returns an empty state with
// defaultDeliveryDays if the file doesn't exist. An absent or out-of-range
// delivery_days also yields the default; a readings array of the wrong
// length is an error.
func LoadState(filePath string, defaultDeliveryDays int) (*model.TankState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.TankState{
				Readings:     make([]*float64, model.HistoryDays),
				DeliveryDays: defaultDeliveryDays,
			}, nil
		}
		return nil, err
	}
	state := model.TankState{DeliveryDays: defaultDeliveryDays}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if len(state.Readings) != model.HistoryDays {
		return nil, fmt.Errorf("%s: %w, got %d", filePath, model.ErrSeriesLength, len(state.Readings))
	}
	state.DeliveryDays = model.DeliveryDaysOr(state.DeliveryDays, defaultDeliveryDays)
	return &state, nil
}

// SaveState writes the tank state to a JSON file, creating its directory.
func SaveState(filePath string, state *model.TankState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
