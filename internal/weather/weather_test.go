package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrent_ShapesReport(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"name":"Paris","weather":[{"description":"light rain"},{"description":"mist"}],"main":{"temp":288.75}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	rep, err := c.Current(context.Background(), 48.85, 2.35)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	want := Report{Location: "Paris", Conditions: "Light rain", Temperature: 16}
	if rep != want {
		t.Fatalf("report = %+v, want %+v", rep, want)
	}
	if gotQuery != "appid=k&lat=48.85&lon=2.35" {
		t.Fatalf("query = %q", gotQuery)
	}
}

func TestCurrent_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		status int
		body   string
	}{
		"http error":    {http.StatusUnauthorized, `{"message":"invalid key"}`},
		"bad json":      {http.StatusOK, `{"name":`},
		"no conditions": {http.StatusOK, `{"name":"X","weather":[],"main":{"temp":280}}`},
	}
	for name, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		_, err := NewClient(Config{BaseURL: srv.URL}).Current(context.Background(), 0, 0)
		srv.Close()
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
		if name == "no conditions" && !errors.Is(err, ErrNoConditions) {
			t.Errorf("%s: err = %v, want ErrNoConditions", name, err)
		}
	}
}

func TestKelvinToCelsius(t *testing.T) {
	t.Parallel()

	cases := map[float64]int{
		273.15: 0,
		288.75: 16,
		270.75: -2,
		270.55: -3,
		300.0:  27,
	}
	for k, want := range cases {
		if got := kelvinToCelsius(k); got != want {
			t.Errorf("kelvinToCelsius(%v) = %d, want %d", k, got, want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":               "",
		"clear sky":      "Clear sky",
		"Overcast":       "Overcast",
		"éclaircies":     "Éclaircies",
		"1 inch of snow": "1 inch of snow",
	}
	for in, want := range cases {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersionChecker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cards":"1.2.0","other":"9.9"}`))
	}))
	defer srv.Close()

	v := NewVersionChecker(srv.URL)
	if up, err := v.UpdateAvailable(context.Background(), "1.1.0"); err != nil || !up {
		t.Fatalf("UpdateAvailable(1.1.0) = %v, %v", up, err)
	}
	if up, err := v.UpdateAvailable(context.Background(), "1.2.0"); err != nil || up {
		t.Fatalf("UpdateAvailable(1.2.0) = %v, %v", up, err)
	}
}
