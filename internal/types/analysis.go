package types

import (
	"encoding/json"
	"time"
)

// RunReport summarizes a headless simulation run
type RunReport struct {
	Catalog     string        `json:"catalog"`
	Policy      string        `json:"policy"`
	Accumulator string        `json:"accumulator"`
	Bodies      int           `json:"bodies"`
	Asteroids   int           `json:"asteroids"`
	Steps       int64         `json:"steps"`
	TimeStep    float32       `json:"time_step_s"`
	Elapsed     float64       `json:"elapsed_s"`
	Date        string        `json:"date"`
	Duration    time.Duration `json:"duration"`
	Snapshots   string        `json:"snapshots,omitempty"`

	EnergyStart float64 `json:"energy_start_j"`
	EnergyEnd   float64 `json:"energy_end_j"`

	Belt *BeltReport `json:"belt,omitempty"`
}

// EnergyDrift returns the relative change in total energy over the run
func (r RunReport) EnergyDrift() float64 {
	if r.EnergyStart == 0 {
		return 0
	}
	return (r.EnergyEnd - r.EnergyStart) / r.EnergyStart
}

// BeltReport describes the asteroid belt around its primary
type BeltReport struct {
	Primary string `json:"primary"`
	Count   int    `json:"count"`
	Bound   int    `json:"bound"`

	Radius       Distribution `json:"radius_m"`
	Eccentricity Distribution `json:"eccentricity"`
	Inclination  Distribution `json:"inclination_rad"`
}

// Distribution holds summary statistics of a sample
type Distribution struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// ToJSON renders the report indented for the terminal
func (r RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
