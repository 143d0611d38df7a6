package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// RawRecord is the decoded body of one OpenWeatherMap current-weather
// response. Every part is optional; absent keys decode to nil.
type RawRecord struct {
	Name    *string     `json:"name,omitempty"`
	Sys     *Sys        `json:"sys,omitempty"`
	Main    *Main       `json:"main,omitempty"`
	Weather []Condition `json:"weather,omitempty"`
	Wind    *Wind       `json:"wind,omitempty"`
}

type Sys struct {
	Country *string `json:"country,omitempty"`
}

type Main struct {
	Temp     *float64 `json:"temp,omitempty"`
	Humidity *int64   `json:"humidity,omitempty"`
}

type Condition struct {
	Description *string `json:"description,omitempty"`
}

// UnmarshalJSON accepts humidity written as an integer or as a float with
// no fractional part, such as 40.0.
func (m *Main) UnmarshalJSON(data []byte) error {
	var aux struct {
		Temp     *float64     `json:"temp"`
		Humidity *json.Number `json:"humidity"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Temp = aux.Temp
	m.Humidity = nil
	if aux.Humidity == nil {
		return nil
	}
	h, err := integer(*aux.Humidity)
	if err != nil {
		return fmt.Errorf("main.humidity: %w", err)
	}
	m.Humidity = &h
	return nil
}

func integer(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%s is not an integer", n)
	}
	return int64(f), nil
}

type Wind struct {
	Speed *float64 `json:"speed,omitempty"`
}
