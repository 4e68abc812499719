package config

// ReviewConfig holds consultation tier promotion thresholds.
type ReviewConfig struct {
	SpecialistThreshold int
	ConsensusThreshold  float64
	AccuracyThreshold   int
	MinAccuracy         int
	MaxAccuracy         int
}

func NewReviewConfig() *ReviewConfig {
	return &ReviewConfig{
		SpecialistThreshold: 4,
		ConsensusThreshold:  0.80,
		AccuracyThreshold:   4,
		MinAccuracy:         1,
		MaxAccuracy:         5,
	}
}

// MilestoneSchedule maps valid follow-up day offsets to the token reward
// paid for validated feedback on that day.
var MilestoneSchedule = map[int]int{
	3:  5,
	7:  10,
	14: 15,
	21: 20,
	30: 25,
}
