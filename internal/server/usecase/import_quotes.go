package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"discord-quote-importer/internal/cache"
	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/pkg/config"
	"discord-quote-importer/internal/ports"
)

// ImportQuotesUseCase инкапсулирует бизнес-логику пакетного импорта цитат.
// Записи обрабатываются строго последовательно: каждая запись порождает
// несколько сцепленных обращений к одному rate-limit-ограниченному API, и
// параллелизм не сократил бы время, зато перемешал бы диагностику.
type ImportQuotesUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	resolver   ports.MessageResolver
	quoter     ports.QuoterInferrer
	builder    ports.QuoteBuilder
	store      ports.QuoteStore
	cacheStore *cache.CacheStore
	log        *slog.Logger
}

// NewImportQuotesUseCase создает новый экземпляр ImportQuotesUseCase.
func NewImportQuotesUseCase(
	cfg *config.Config,
	parser ports.Parser,
	resolver ports.MessageResolver,
	quoter ports.QuoterInferrer,
	builder ports.QuoteBuilder,
	store ports.QuoteStore,
	cacheStore *cache.CacheStore,
	logger *slog.Logger,
) *ImportQuotesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportQuotesUseCase{
		cfg:        cfg,
		parser:     parser,
		resolver:   resolver,
		quoter:     quoter,
		builder:    builder,
		store:      store,
		cacheStore: cacheStore,
		log:        logger,
	}
}

// Import выполняет один запуск импорта: скачивание, разбор, обработку каждой
// записи и единственную пакетную фиксацию в хранилище. Ошибка возвращается
// только для фатальных для всего пакета состояний (нечитаемая полезная
// нагрузка, сбой фиксации); сбой отдельной записи никогда не прерывает цикл.
func (uc *ImportQuotesUseCase) Import(ctx context.Context, src ports.DataSource, rep ports.Reporter, label string) (*domain.ImportSummary, error) {
	rep.Progress(fmt.Sprintf("Importing quotes from %s: downloading attachment", label))
	data, err := src.Fetch()
	if err != nil {
		rep.Warn(fmt.Sprintf("❌ Failed to import quotes! (failed to download %s)", label))
		return nil, fmt.Errorf("failed to fetch export data: %w", err)
	}

	// Байт-в-байт повторная загрузка того же экспорта не импортируется заново.
	hash := cache.CalculateHash(data)
	if item, found := uc.cacheStore.Get(hash); found {
		uc.log.InfoContext(ctx, "Duplicate import payload, returning cached summary", "hash", hash)
		rep.Info(fmt.Sprintf("🗒️ This export was already imported (%d/%d quotes); skipping.",
			item.Summary.Imported, item.Summary.Total))
		summary := item.Summary
		return &summary, nil
	}

	rep.Progress(fmt.Sprintf("Importing quotes from %s: deserializing JSON", label))
	records, err := uc.parser.Parse(data)
	if err != nil {
		rep.Warn("❌ Failed to import quotes! (failed to deserialize JSON)")
		return nil, fmt.Errorf("failed to parse export data: %w", err)
	}

	uc.log.InfoContext(ctx, "Starting quote import", "source", label, "records", len(records))

	imported := 0
	for i, rec := range records {
		if i%uc.cfg.Import.ProgressEvery == 0 {
			rep.Progress(fmt.Sprintf("Importing quotes from %s: %d/%d", label, i, len(records)))
		}
		if uc.importOne(ctx, rep, rec) {
			imported++
		}
	}

	rep.Progress(fmt.Sprintf("Importing quotes from %s: writing to the database", label))
	if err := uc.store.Save(ctx); err != nil {
		uc.log.ErrorContext(ctx, "Quote batch commit failed", "source", label, "error", err)
		rep.Warn("❌ Failed to import quotes! (error when writing to the database)")
		return nil, fmt.Errorf("failed to persist quote batch: %w", err)
	}

	summary := domain.ImportSummary{Source: label, Imported: imported, Total: len(records)}
	uc.cacheStore.Put(hash, summary, time.Duration(uc.cfg.Import.CacheTTLMinutes)*time.Minute)

	rep.Progress(fmt.Sprintf("Imported %d quotes from %s.", imported, label))
	uc.log.InfoContext(ctx, "Quote import finished", "source", label, "imported", imported, "total", len(records))
	return &summary, nil
}

// importOne обрабатывает одну легаси-запись и сообщает, была ли она
// поставлена в очередь на запись. Любой исход записи терминален для нее
// одной: деградация и сбой выражаются диагностикой, не ошибкой.
func (uc *ImportQuotesUseCase) importOne(ctx context.Context, rep ports.Reporter, rec domain.LegacyRecord) bool {
	res := uc.resolver.Resolve(ctx, rec)

	switch res.Failure {
	case domain.ResolveMessageIDInvalid:
		rep.Warn(fmt.Sprintf("⚠️ Failed to import quote %s! (invalid message ID)", rec.ID))
		return false

	case domain.ResolveChannelNameEmpty:
		uc.store.Add(uc.builder.Degraded(ctx, rep, rec, res.MessageID))
		return true

	case domain.ResolveChannelNotFound:
		rep.Warn(fmt.Sprintf("⚠️ Failed to import quote %s! (channel %s not found)", rec.ID, rec.Channel))
		return false

	case domain.ResolveMessageNotFound:
		rep.Warn(fmt.Sprintf("⚠️ Failed to import quote %s! (message %s not found)", rec.ID, rec.MessageID))
		return false

	case domain.ResolveAccessError:
		uc.log.WarnContext(ctx, "Record skipped due to platform access error", "record_id", rec.ID, "error", res.Err)
		rep.Warn(fmt.Sprintf("⚠️ Failed to import quote %s! (failed to access channel or message)", rec.ID))
		return false
	}

	quoterID, err := uc.quoter.InferQuoter(ctx, rep, res.Message, rec.ID)
	if err != nil {
		uc.log.WarnContext(ctx, "Record skipped due to platform access error", "record_id", rec.ID, "error", err)
		rep.Warn(fmt.Sprintf("⚠️ Failed to import quote %s! (failed to access channel or message)", rec.ID))
		return false
	}
	if quoterID == 0 {
		rep.Warn(fmt.Sprintf("⚠️ Failed to find quoter of quote %s!", rec.ID))
	}

	uc.store.Add(uc.builder.FromMessage(rec, res.Message, quoterID))
	return true
}
