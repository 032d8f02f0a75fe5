package card

import "github.com/tinytelemetry/cards/internal/display"

var backgroundBitmap = display.Bitmap{
	Name: "card_background",
	Fill: true,
	Rows: []string{
		"┌──────────────────────────────────┐",
	},
}

var batteryBitmap = display.Bitmap{
	Name: "battery",
	Rows: []string{"[    ]"},
}

var btConnectedBitmap = display.Bitmap{Name: "bt_connected", Rows: []string{"ᛒ"}}

var btDisconnectedBitmap = display.Bitmap{Name: "bt_disconnected", Rows: []string{"×"}}

var weatherBitmaps = map[Condition]display.Bitmap{
	ConditionUnknown: {Name: "weather_unknown", Rows: []string{" ? "}},
	ConditionClear:   {Name: "weather_clear", Rows: []string{"\\|/", "-O-"}},
	ConditionCloudy:  {Name: "weather_cloudy", Rows: []string{" __", "(__)"}},
	ConditionRain:    {Name: "weather_rain", Rows: []string{"(__)", "''''"}},
	ConditionSnow:    {Name: "weather_snow", Rows: []string{"(__)", "* * "}},
	ConditionStorm:   {Name: "weather_storm", Rows: []string{"(__)", " /  "}},
	ConditionMist:    {Name: "weather_mist", Rows: []string{"≈≈≈", "≈≈≈"}},
}

func weatherBitmap(c Condition) display.Bitmap {
	if bmp, ok := weatherBitmaps[c]; ok {
		return bmp
	}
	return weatherBitmaps[ConditionUnknown]
}
