package card

import "testing"

func TestClassifyConditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Condition
	}{
		{"", ConditionUnknown},
		{"Clear sky", ConditionClear},
		{"Overcast clouds", ConditionCloudy},
		{"Scattered clouds", ConditionCloudy},
		{"Light rain", ConditionRain},
		{"Shower drizzle", ConditionRain},
		{"Thunderstorm with light rain", ConditionStorm},
		{"Light snow", ConditionSnow},
		{"Mist", ConditionMist},
		{"  HAZE  ", ConditionMist},
		{"Volcanic", ConditionUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyConditions(tt.in); got != tt.want {
			t.Errorf("ClassifyConditions(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
