package apistore_test

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/bluescreen10/apistore"
)

func TestParseBodyForm(t *testing.T) {
	body := bytes.NewReader([]byte("token=abc%20123&retries=3&token=ignored&empty="))
	r := httptest.NewRequest("POST", "/", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var values []apistore.KeyValue
	if err := apistore.ParseBody(r, &values); err != nil {
		t.Fatal(err)
	}

	expected := []apistore.KeyValue{
		{Key: "token", Value: apistore.String("abc 123")},
		{Key: "retries", Value: apistore.String("3")},
		{Key: "token", Value: apistore.String("ignored")},
		{Key: "empty", Value: apistore.String("")},
	}
	if !reflect.DeepEqual(values, expected) {
		t.Fatalf("expected '%v' got '%v'", expected, values)
	}
}

func TestParseBodyFormValue(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", bytes.NewReader([]byte("value=abc123")))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var v apistore.Value
	if err := apistore.ParseBody(r, &v); err != nil {
		t.Fatal(err)
	}
	if v.String() != "abc123" {
		t.Fatalf("expected 'abc123' got '%s'", v)
	}

	r = httptest.NewRequest("PUT", "/", bytes.NewReader([]byte("other=abc123")))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := apistore.ParseBody(r, &v); err == nil {
		t.Fatal("expected an error for a missing value field")
	}
}

func TestParseBodyText(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", bytes.NewReader([]byte("a=b&c")))

	var v apistore.Value
	if err := apistore.ParseBody(r, &v); err != nil {
		t.Fatal(err)
	}
	if v.Kind() != apistore.KindString || v.String() != "a=b&c" {
		t.Fatalf("expected 'a=b&c' got '%s'", v)
	}

	r = httptest.NewRequest("POST", "/", bytes.NewReader([]byte("a=1&b=2\n")))
	r.Header.Set("Content-Type", "text/plain; charset=utf-8")

	var values []apistore.KeyValue
	if err := apistore.ParseBody(r, &values); err != nil {
		t.Fatal(err)
	}
	if len(values) != 2 || values[1].Key != "b" || values[1].Value.String() != "2" {
		t.Fatalf("expected 'a=1' and 'b=2' got '%v'", values)
	}
}

func TestParseBodyJSON(t *testing.T) {
	body := bytes.NewReader([]byte(`[{"key":"retries","value":3},{"key":"admin","value":true},{"key":"gone","value":null}]`))
	r := httptest.NewRequest("POST", "/", body)
	r.Header.Set("Content-Type", "application/json")

	var values []apistore.KeyValue
	if err := apistore.ParseBody(r, &values); err != nil {
		t.Fatal(err)
	}

	expected := []apistore.KeyValue{
		{Key: "retries", Value: apistore.Number(3)},
		{Key: "admin", Value: apistore.Bool(true)},
		{Key: "gone", Value: apistore.Null()},
	}
	if !reflect.DeepEqual(values, expected) {
		t.Fatalf("expected '%v' got '%v'", expected, values)
	}

	r = httptest.NewRequest("PUT", "/", bytes.NewReader([]byte(`{"a":1}`)))
	r.Header.Set("Content-Type", "application/json")

	var v apistore.Value
	if err := apistore.ParseBody(r, &v); err == nil {
		t.Fatal("expected an error for a non scalar value")
	}
}

func TestParseBodyXML(t *testing.T) {
	body := bytes.NewReader([]byte(`<values><value key="token">abc123</value><value key="retries">3</value></values>`))
	r := httptest.NewRequest("POST", "/", body)
	r.Header.Set("Content-Type", "application/xml")

	var values []apistore.KeyValue
	if err := apistore.ParseBody(r, &values); err != nil {
		t.Fatal(err)
	}

	expected := []apistore.KeyValue{
		{Key: "token", Value: apistore.String("abc123")},
		{Key: "retries", Value: apistore.String("3")},
	}
	if !reflect.DeepEqual(values, expected) {
		t.Fatalf("expected '%v' got '%v'", expected, values)
	}

	r = httptest.NewRequest("PUT", "/", bytes.NewReader([]byte(`<value>abc123</value>`)))
	r.Header.Set("Content-Type", "application/xml")

	var v apistore.Value
	if err := apistore.ParseBody(r, &v); err != nil {
		t.Fatal(err)
	}
	if v.String() != "abc123" {
		t.Fatalf("expected 'abc123' got '%s'", v)
	}
}

func TestParseBodyUnsupported(t *testing.T) {
	r := httptest.NewRequest("POST", "/", bytes.NewReader([]byte("abc")))
	r.Header.Set("Content-Type", "image/png")

	var v apistore.Value
	if err := apistore.ParseBody(r, &v); !errors.Is(err, apistore.ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType got '%v'", err)
	}

	var n int
	r = httptest.NewRequest("POST", "/", bytes.NewReader([]byte("abc")))
	if err := apistore.ParseBody(r, &n); err == nil {
		t.Fatal("expected an error for an unsupported destination")
	}
}
