package source

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"discord-quote-importer/internal/ports"
)

// HTTPSource реализует интерфейс DataSource для скачивания экспорта по URL.
// Легаси-экспорт приходит в виде вложения, доступного по прямой ссылке CDN.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource создает новый экземпляр HTTPSource.
func NewHTTPSource(url string, timeout time.Duration) ports.DataSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch скачивает содержимое по URL и возвращает его.
func (s *HTTPSource) Fetch() ([]byte, error) {
	if s.url == "" {
		return nil, fmt.Errorf("не указан URL вложения")
	}

	resp, err := s.client.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment body: %w", err)
	}

	return data, nil
}
