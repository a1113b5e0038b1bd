package cookiestore_test

import (
	"net/http"
	"testing"

	"github.com/bluescreen10/apistore"
	"github.com/bluescreen10/apistore/cookiestore"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := cookiestore.New(cookiestore.WithMetrics(reg))

	serve(s, "", func(w http.ResponseWriter, r *http.Request) {
		s.Store(r.Context(), "app", "acct1", "a", apistore.String("1"))
		s.Delete(r.Context(), "app", "acct1", "b")
		s.Retrieve(r.Context(), "app", "acct1", "a")
		w.WriteHeader(http.StatusNoContent)
		s.Store(r.Context(), "app", "acct1", "c", apistore.String("3"))
	})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				counts[f.GetName()+":"+l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}

	expected := map[string]float64{
		"apistore_cookie_operations_total:store":                1,
		"apistore_cookie_operations_total:delete":               1,
		"apistore_cookie_operations_total:retrieve":             1,
		"apistore_cookie_writes_dropped_total:response_started": 1,
	}
	for k, v := range expected {
		if counts[k] != v {
			t.Fatalf("expected '%v' for '%s' got '%v'", v, k, counts[k])
		}
	}
}
