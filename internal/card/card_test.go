package card

import (
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/cards/internal/display"
	"github.com/tinytelemetry/cards/internal/model"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var fixedNow = time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)

func newTestCard(t *testing.T, values *model.LastKnown, status model.Status) (*Card, *display.Canvas, *manualClock) {
	t.Helper()
	clk := &manualClock{t: fixedNow}
	canvas := display.NewCanvas(display.WithClock(clk.now))
	c := New(canvas, values, status, fixedNow, Options{Use24Hour: true})
	return c, canvas, clk
}

func TestNew_StartsBelowViewport(t *testing.T) {
	t.Parallel()

	c, canvas, _ := newTestCard(t, model.NewLastKnown(), model.Status{BatteryPercent: 80})

	if got := canvas.Frame(c.group); got != model.CardSpawnRect {
		t.Fatalf("initial frame = %+v, want %+v", got, model.CardSpawnRect)
	}
	if c.Position() != model.PositionSpawn {
		t.Fatalf("Position = %v, want spawn", c.Position())
	}
	if got := canvas.LiveLayers(); got != 11 {
		t.Fatalf("LiveLayers = %d, want 11", got)
	}
	if c.TimeText() != "14:05" {
		t.Fatalf("TimeText = %q, want 14:05", c.TimeText())
	}
	if c.DateText() != "Fri 01 Mar" {
		t.Fatalf("DateText = %q, want Fri 01 Mar", c.DateText())
	}
}

func TestNew_TwelveHourClock(t *testing.T) {
	t.Parallel()

	canvas := display.NewCanvas()
	c := New(canvas, model.NewLastKnown(), model.Status{}, fixedNow, Options{})
	if c.TimeText() != "2:05" {
		t.Fatalf("TimeText = %q, want 2:05", c.TimeText())
	}
}

func TestSpawnThenDespawn(t *testing.T) {
	t.Parallel()

	c, canvas, clk := newTestCard(t, model.NewLastKnown(), model.Status{})

	c.Spawn()
	clk.advance(model.DefaultTransitionDelay)
	if got := canvas.Frame(c.group); got != model.CardRestingRect {
		t.Fatalf("after spawn frame = %+v, want %+v", got, model.CardRestingRect)
	}
	if !strings.Contains(canvas.Render().String(), "14:05") {
		t.Fatal("resting card should render the time")
	}

	c.Despawn()
	if c.Position() != model.PositionDespawn {
		t.Fatalf("Position = %v, want despawn", c.Position())
	}
	clk.advance(model.DefaultTransitionDelay)
	if got := canvas.Frame(c.group); got != model.CardDespawnRect {
		t.Fatalf("after despawn frame = %+v, want %+v", got, model.CardDespawnRect)
	}
}

func TestBorrowedValuesTrackUpdates(t *testing.T) {
	t.Parallel()

	values := model.NewLastKnown()
	values.Location.Set("Paris")
	c, canvas, clk := newTestCard(t, values, model.Status{})
	c.Spawn()
	clk.advance(time.Second)

	if !strings.Contains(canvas.Render().String(), "Paris") {
		t.Fatal("location not rendered")
	}
	values.Location.Set("Berlin")
	out := canvas.Render().String()
	if !strings.Contains(out, "Berlin") || strings.Contains(out, "Paris") {
		t.Fatalf("card did not follow the borrowed buffer:\n%s", out)
	}
}

func TestDestroy_ReleasesEverything(t *testing.T) {
	t.Parallel()

	c, canvas, _ := newTestCard(t, model.NewLastKnown(), model.Status{})
	c.Destroy()

	if got := canvas.LiveLayers(); got != 0 {
		t.Fatalf("LiveLayers = %d, want 0", got)
	}
	if !c.Destroyed() {
		t.Fatal("Destroyed() = false")
	}
	if c.TimeText() != "" || c.DateText() != "" {
		t.Fatal("owned buffers should be released")
	}

	// Further calls must not touch the surface.
	c.Destroy()
	c.Spawn()
	c.Despawn()
	if got := canvas.LiveLayers(); got != 0 {
		t.Fatalf("LiveLayers after reuse = %d, want 0", got)
	}
}

func TestWeatherIconFromConditions(t *testing.T) {
	t.Parallel()

	values := model.NewLastKnown()
	values.Conditions.Set("Light rain")
	c, _, _ := newTestCard(t, values, model.Status{})
	if c.Weather() != ConditionRain {
		t.Fatalf("Weather = %v, want rain", c.Weather())
	}
}

func TestBatteryBarFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		percent int
		want    int
	}{
		{-5, 0},
		{0, 0},
		{50, 8},
		{100, 16},
		{180, 16},
	}
	for _, tt := range tests {
		if got := batteryBarFrame(tt.percent).W; got != tt.want {
			t.Errorf("batteryBarFrame(%d).W = %d, want %d", tt.percent, got, tt.want)
		}
	}
}
