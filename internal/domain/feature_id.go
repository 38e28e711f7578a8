package domain

import "fmt"

// FeatureID identifies a real-world map feature across sessions.
// The zero value is EmptyFeatureID and means "no backing feature".
type FeatureID struct {
	MwmName      string `json:"mwm_name"`
	MwmVersion   int64  `json:"mwm_version"`
	FeatureIndex int    `json:"feature_index"`
}

var EmptyFeatureID = FeatureID{}

func (f FeatureID) IsEmpty() bool {
	return f == EmptyFeatureID
}

func (f FeatureID) String() string {
	if f.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s:%d:%d", f.MwmName, f.MwmVersion, f.FeatureIndex)
}
