package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/bluescreen10/apistore"
	"github.com/bluescreen10/apistore/internal/metrics"
	"github.com/bluescreen10/apistore/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const maxBodySize = 1 << 16

var errNoKeys = errors.New("keys query parameter is empty")

type handler struct {
	storage apistore.Storage
	logger  logrus.FieldLogger
}

// newHandler routes the storage API under /storage.
func newHandler(storage apistore.Storage, log *logrus.Logger, gatherer prometheus.Gatherer) http.Handler {
	h := &handler{storage: storage, logger: log}

	mux := apistore.NewServeMux()
	mux.Use(logger.New(logger.WithLogger(log)))

	mux.Handle("GET /metrics", metrics.Handler(gatherer))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	api := mux.StorageGroup("/storage", storage)
	api.HandleFunc("GET /{basename}/{group}/{key}", h.retrieve)
	api.HandleFunc("GET /{basename}/{group}", h.retrieveMulti)
	api.HandleFunc("PUT /{basename}/{group}/{key}", h.store)
	api.HandleFunc("POST /{basename}/{group}", h.storeMulti)
	api.HandleFunc("DELETE /{basename}/{group}/{key}", h.delete)
	api.HandleFunc("DELETE /{basename}/{group}", h.deleteMulti)

	return mux
}

func (h *handler) retrieve(w http.ResponseWriter, r *http.Request) {
	v, err := h.storage.Retrieve(r.Context(), r.PathValue("basename"), r.PathValue("group"), r.PathValue("key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if v.IsNull() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, v.String())
}

func (h *handler) retrieveMulti(w http.ResponseWriter, r *http.Request) {
	keys, err := queryKeys(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	values, err := h.storage.RetrieveMulti(r.Context(), r.PathValue("basename"), r.PathValue("group"), keys)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(values)
}

// store reads the value from the body, see apistore.ParseBody.
func (h *handler) store(w http.ResponseWriter, r *http.Request) {
	var value apistore.Value
	if !h.parseBody(w, r, &value) {
		return
	}

	if err := h.storage.Store(r.Context(), r.PathValue("basename"), r.PathValue("group"), r.PathValue("key"), value); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) storeMulti(w http.ResponseWriter, r *http.Request) {
	var values []apistore.KeyValue
	if !h.parseBody(w, r, &values) {
		return
	}

	if err := h.storage.StoreMulti(r.Context(), r.PathValue("basename"), r.PathValue("group"), values); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) parseBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	err := apistore.ParseBody(r, dst)
	switch {
	case errors.Is(err, apistore.ErrUnsupportedContentType):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
	return err == nil
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Delete(r.Context(), r.PathValue("basename"), r.PathValue("group"), r.PathValue("key")); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteMulti(w http.ResponseWriter, r *http.Request) {
	keys, err := queryKeys(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.storage.DeleteMulti(r.Context(), r.PathValue("basename"), r.PathValue("group"), keys); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WithError(err).WithField("path", r.URL.Path).Error("storage operation failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// queryKeys returns the comma separated keys of the keys query parameter.
func queryKeys(r *http.Request) ([]string, error) {
	var keys []string
	for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	if len(keys) == 0 {
		return nil, errNoKeys
	}
	return keys, nil
}
