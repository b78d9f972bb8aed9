package source

import (
	"fmt"

	"discord-quote-importer/internal/ports"
)

// MemorySource реализует интерфейс DataSource поверх уже загруженного в
// память экспорта. Сервер оборачивает в него тело загруженного файла, чтобы
// конвейер импорта не зависел от времени жизни HTTP-запроса.
type MemorySource struct {
	data []byte
}

// NewMemorySource создает новый экземпляр MemorySource.
func NewMemorySource(data []byte) ports.DataSource {
	return &MemorySource{data: data}
}

// Fetch возвращает содержимое экспорта.
func (s *MemorySource) Fetch() ([]byte, error) {
	if s.data == nil {
		return nil, fmt.Errorf("данные экспорта не установлены")
	}

	// Возвращаем копию, чтобы конвейер не мог изменить оригинальный буфер
	dataCopy := make([]byte, len(s.data))
	copy(dataCopy, s.data)

	return dataCopy, nil
}
