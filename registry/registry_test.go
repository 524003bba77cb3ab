package registry_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meenmo/termstruct/curve"
	"github.com/meenmo/termstruct/interp"
	"github.com/meenmo/termstruct/registry"
	"github.com/meenmo/termstruct/utils"
)

func testCurve(t *testing.T, id string) *curve.Curve {
	t.Helper()
	asOf := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{asOf, asOf.AddDate(1, 0, 0)}
	c, err := curve.New(id, asOf, curve.PillarsFrom(asOf, dates, []float64{1, 0.98}, utils.Act365F),
		interp.LogLinear, curve.Discount, utils.Act365F)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRegisterAndLookup(t *testing.T) {
	t.Parallel()

	reg := registry.NewMap()
	k := registry.Key{Currency: "EUR", CurveID: "OIS"}
	c := testCurve(t, "OIS")
	reg.Register(k, c)

	got, err := reg.Lookup(k)
	if err != nil {
		t.Fatal(err)
	}
	if got != curve.TermStructure(c) {
		t.Error("lookup returned a different curve")
	}
}

func TestLookupMissing(t *testing.T) {
	t.Parallel()

	reg := registry.NewMap()
	_, err := reg.Lookup(registry.Key{Currency: "USD", CurveID: "SOFR"})
	var nf *registry.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Key.CurveID != "SOFR" {
		t.Errorf("error key: got %s", nf.Key)
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	k := registry.Key{Currency: "EUR", CurveID: "ESTR"}
	if got := k.String(); got != "Yield/EUR/ESTR" {
		t.Errorf("key string: got %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := registry.NewMap()
	c := testCurve(t, "SHARED")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			reg.Register(registry.Key{Currency: "EUR", CurveID: "C"}, c)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = reg.Lookup(registry.Key{Currency: "EUR", CurveID: "C"})
		}()
	}
	wg.Wait()
}
