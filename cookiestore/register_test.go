package cookiestore_test

import (
	"testing"

	"github.com/bluescreen10/apistore"
	"github.com/bluescreen10/apistore/cookiestore"
)

func TestRegisterDeferred(t *testing.T) {
	apistore.SetDefault(nil)
	t.Cleanup(func() { apistore.DrainDeferred(apistore.NewRegistry()) })

	if err := cookiestore.Register(); err != nil {
		t.Fatal(err)
	}

	if ids := apistore.Deferred(); len(ids) != 1 || ids[0] != cookiestore.ID {
		t.Fatalf("expected '[cookie]' got '%v'", ids)
	}

	reg := apistore.NewRegistry()
	if n := apistore.DrainDeferred(reg); n != 1 {
		t.Fatalf("expected '1' registration got '%d'", n)
	}

	s, err := reg.New("cookie")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*cookiestore.Store); !ok {
		t.Fatalf("expected *cookiestore.Store got '%T'", s)
	}
}

func TestRegisterWithDefault(t *testing.T) {
	reg := apistore.NewRegistry()
	apistore.SetDefault(reg)
	t.Cleanup(func() { apistore.SetDefault(nil) })

	if err := cookiestore.Register(cookiestore.WithPath("/api")); err != nil {
		t.Fatal(err)
	}

	if ids := apistore.Deferred(); len(ids) != 0 {
		t.Fatalf("expected nothing deferred got '%v'", ids)
	}

	s, err := reg.New(cookiestore.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(apistore.Middleware); !ok {
		t.Fatal("expected the cookie storage to be a middleware")
	}
}
