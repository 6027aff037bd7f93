package model

import "time"

// TankState is the persisted shape of the reading store. Readings always
// holds HistoryDays entries, nil for unset slots.
type TankState struct {
	Readings     []*float64 `json:"readings"`
	DeliveryDays int        `json:"delivery_days"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
