package card

import "strings"

// Condition is the weather category used to pick an icon.
type Condition int

const (
	ConditionUnknown Condition = iota
	ConditionClear
	ConditionCloudy
	ConditionRain
	ConditionSnow
	ConditionStorm
	ConditionMist
)

func (c Condition) String() string {
	switch c {
	case ConditionClear:
		return "clear"
	case ConditionCloudy:
		return "cloudy"
	case ConditionRain:
		return "rain"
	case ConditionSnow:
		return "snow"
	case ConditionStorm:
		return "storm"
	case ConditionMist:
		return "mist"
	default:
		return "unknown"
	}
}

// Ordered so that "thunderstorm with light rain" is a storm and
// "light snow showers" is snow.
var conditionKeywords = []struct {
	cond  Condition
	words []string
}{
	{ConditionStorm, []string{"thunder", "storm", "tornado", "squall", "hurricane"}},
	{ConditionSnow, []string{"snow", "sleet", "hail", "ice", "blizzard"}},
	{ConditionRain, []string{"rain", "drizzle", "shower"}},
	{ConditionMist, []string{"mist", "fog", "haze", "smoke", "dust", "sand", "ash"}},
	{ConditionCloudy, []string{"cloud", "overcast"}},
	{ConditionClear, []string{"clear", "sun", "fair"}},
}

// ClassifyConditions derives a weather category from a free-form
// conditions string such as "Light rain" or "Overcast clouds".
func ClassifyConditions(s string) Condition {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ConditionUnknown
	}
	for _, entry := range conditionKeywords {
		for _, w := range entry.words {
			if strings.Contains(s, w) {
				return entry.cond
			}
		}
	}
	return ConditionUnknown
}
