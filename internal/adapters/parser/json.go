package parser

import (
	"encoding/json"
	"fmt"

	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/ports"
)

// JsonParser реализует интерфейс Parser для разбора JSON-экспорта легаси-бота.
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// Parse преобразует срез байт с JSON-массивом в список легаси-записей.
// Вход обязан быть массивом: любой другой корневой элемент — ошибка всего
// запуска, а не отдельной записи.
func (p *JsonParser) Parse(data []byte) ([]domain.LegacyRecord, error) {
	var records []domain.LegacyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("export payload is not a json array")
	}
	return records, nil
}
