package socketrpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tinytelemetry/cards/internal/model"
)

// stubWatch returns fixed values for dispatch unit testing.
type stubWatch struct {
	last model.Dictionary
}

func (w *stubWatch) State(context.Context) (model.WatchState, error) {
	return model.WatchState{Battery: 50}, nil
}
func (w *stubWatch) Next(context.Context) error { return nil }
func (w *stubWatch) Deliver(_ context.Context, d model.Dictionary) error {
	w.last = d
	return nil
}
func (w *stubWatch) SetConnection(context.Context, bool) error { return nil }
func (w *stubWatch) Refresh(context.Context) error           { return nil }

func dispatch(t *testing.T, w model.Controller, method, params string) Response {
	t.Helper()
	s := NewServer("", w)
	req := Request{JSONRPC: "2.0", ID: 7, Method: method}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return s.dispatch(context.Background(), req)
}

func TestDispatch_State(t *testing.T) {
	resp := dispatch(t, &stubWatch{}, "State", "")
	if resp.Error != nil {
		t.Fatalf("error = %+v", resp.Error)
	}
	if resp.ID != 7 || resp.JSONRPC != "2.0" {
		t.Errorf("envelope = %+v", resp)
	}
	var st model.WatchState
	if err := json.Unmarshal(resp.Result, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.Battery != 50 {
		t.Errorf("battery = %d, want 50", st.Battery)
	}
}

func TestDispatch_DeliverCountsTuples(t *testing.T) {
	w := &stubWatch{}
	resp := dispatch(t, w, "Deliver", `{"Frame":"{\"0\":\"Rome\",\"x\":1,\"1\":\"Clear\"}"}`)
	if resp.Error != nil {
		t.Fatalf("error = %+v", resp.Error)
	}
	if string(resp.Result) != "2" {
		t.Errorf("result = %s, want 2", resp.Result)
	}
	if len(w.last) != 2 || w.last[1].Value.Str != "Clear" {
		t.Errorf("delivered = %+v", w.last)
	}
}

func TestDispatch_InvalidParams(t *testing.T) {
	cases := []struct {
		method string
		params string
	}{
		{"Deliver", `[1]`},
		{"Deliver", `{"Frame":"nope"}`},
		{"SetConnection", `"yes"`},
	}
	for _, tc := range cases {
		resp := dispatch(t, &stubWatch{}, tc.method, tc.params)
		if resp.Error == nil || resp.Error.Code != codeBadParams {
			t.Errorf("%s %s: error = %+v, want invalid params", tc.method, tc.params, resp.Error)
		}
	}
}

func TestDispatch_UnknownMethod(t *testing.T) {
	resp := dispatch(t, &stubWatch{}, "Reboot", "")
	if resp.Error == nil || resp.Error.Code != codeNoMethod {
		t.Fatalf("error = %+v, want method not found", resp.Error)
	}
}
