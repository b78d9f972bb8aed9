package source

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPSource(t *testing.T) {
	t.Run("Fetch скачивает содержимое по URL", func(t *testing.T) {
		payload := []byte(`[{"id": "1"}]`)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
		}))
		defer srv.Close()

		source := NewHTTPSource(srv.URL, 5*time.Second)

		data, err := source.Fetch()

		assert.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("Fetch возвращает ошибку для пустого URL", func(t *testing.T) {
		source := NewHTTPSource("", 5*time.Second)

		data, err := source.Fetch()

		assert.Error(t, err)
		assert.Nil(t, data)
	})

	t.Run("Fetch возвращает ошибку для статуса не 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		source := NewHTTPSource(srv.URL, 5*time.Second)

		data, err := source.Fetch()

		assert.Error(t, err)
		assert.Nil(t, data)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("Fetch возвращает ошибку для недоступного сервера", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // Сервер закрыт до запроса

		source := NewHTTPSource(srv.URL, time.Second)

		data, err := source.Fetch()

		assert.Error(t, err)
		assert.Nil(t, data)
	})
}
