package apistore

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedContentType is returned by ParseBody for a Content-Type it
// cannot decode.
var ErrUnsupportedContentType = errors.New("content type not supported")

// ParseBody parses the HTTP request body into dst based on the Content-Type
// header. dst must be a *Value, for a single entry, or a *[]KeyValue, for
// a batch.
//
// Supported content types:
//   - text/plain, or no Content-Type: the whole body is a string Value. A
//     batch is read as a form.
//   - application/x-www-form-urlencoded: a batch is one entry per field, in
//     the order they appear in the body. A single Value is the "value"
//     field, which is required.
//   - application/json: a JSON scalar or null, or an array of
//     {"key": ..., "value": ...} objects.
//   - application/xml: <value>abc</value>, or
//     <values><value key="token">abc</value></values>.
//
// Values read from forms and XML are always strings.
//
// Usage:
//
//	func store(w http.ResponseWriter, r *http.Request) {
//	    var values []apistore.KeyValue
//	    if err := apistore.ParseBody(r, &values); err != nil {
//	        http.Error(w, err.Error(), http.StatusBadRequest)
//	        return
//	    }
//	    storage.StoreMulti(r.Context(), "app", "acct1", values)
//	}
func ParseBody(r *http.Request, dst any) error {
	switch dst.(type) {
	case *Value, *[]KeyValue:
	default:
		return errors.Errorf("destination must be *Value or *[]KeyValue, got %T", dst)
	}

	mediaType := "text/plain"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return errors.Wrap(ErrUnsupportedContentType, ct)
		}
		mediaType = mt
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read body")
	}

	switch mediaType {
	case "text/plain":
		if v, ok := dst.(*Value); ok {
			*v = String(string(body))
			return nil
		}
		return parseBodyForm(strings.TrimSpace(string(body)), dst)
	case "application/x-www-form-urlencoded":
		return parseBodyForm(string(body), dst)
	case "application/json":
		return parseBodyJSON(body, dst)
	case "application/xml", "text/xml":
		return parseBodyXML(body, dst)
	default:
		return errors.Wrap(ErrUnsupportedContentType, mediaType)
	}
}

func parseBodyForm(body string, dst any) error {
	fields, err := parseForm(body)
	if err != nil {
		return err
	}

	switch dst := dst.(type) {
	case *[]KeyValue:
		*dst = fields
	case *Value:
		for _, f := range fields {
			if f.Key == "value" {
				*dst = f.Value
				return nil
			}
		}
		return errors.New("required field 'value' is missing")
	}
	return nil
}

// parseForm decodes a form encoded body keeping the field order, which
// url.ParseQuery loses.
func parseForm(body string) ([]KeyValue, error) {
	var fields []KeyValue
	for body != "" {
		var field string
		field, body, _ = strings.Cut(body, "&")
		if field == "" {
			continue
		}

		k, v, _ := strings.Cut(field, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse form field '%s'", k)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse form field '%s'", key)
		}
		fields = append(fields, KeyValue{Key: key, Value: String(value)})
	}
	return fields, nil
}

func parseBodyJSON(body []byte, dst any) error {
	return errors.Wrap(json.Unmarshal(body, dst), "failed to parse json")
}

type xmlValue struct {
	XMLName xml.Name `xml:"value"`
	Key     string   `xml:"key,attr"`
	Value   string   `xml:",chardata"`
}

type xmlValues struct {
	XMLName xml.Name   `xml:"values"`
	Values  []xmlValue `xml:"value"`
}

func parseBodyXML(body []byte, dst any) error {
	switch dst := dst.(type) {
	case *Value:
		var v xmlValue
		if err := xml.Unmarshal(body, &v); err != nil {
			return errors.Wrap(err, "failed to parse xml")
		}
		*dst = String(v.Value)
	case *[]KeyValue:
		var vs xmlValues
		if err := xml.Unmarshal(body, &vs); err != nil {
			return errors.Wrap(err, "failed to parse xml")
		}
		kvs := make([]KeyValue, len(vs.Values))
		for i, v := range vs.Values {
			kvs[i] = KeyValue{Key: v.Key, Value: String(v.Value)}
		}
		*dst = kvs
	}
	return nil
}
