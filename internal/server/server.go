package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"discord-quote-importer/internal/adapters/source"
	"discord-quote-importer/internal/domain"
	"discord-quote-importer/internal/pkg/config"
	"discord-quote-importer/internal/ports"
)

// QuoteImporter определяет интерфейс для варианта использования, который выполняет импорт.
type QuoteImporter interface {
	Import(ctx context.Context, src ports.DataSource, rep ports.Reporter, label string) (*domain.ImportSummary, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	importer   QuoteImporter
	quotes     ports.QuoteStore
}

// New создает новый экземпляр Server
func New(cfg *config.Config, importer QuoteImporter, taskStore *TaskStore, quotes ports.QuoteStore) (*Server, error) {
	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})

	s := &Server{
		cfg:       cfg,
		taskStore: taskStore,
		importer:  importer,
		quotes:    quotes,
	}

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		// Конечная точка для запуска нового импорта
		r.Post("/import", s.handleImport)
		// Конечная точка для проверки статуса задачи
		r.Get("/tasks/{taskID}", s.handleTaskStatus)
		// Конечная точка для получения отчета задачи с пагинацией
		r.Get("/tasks/{taskID}/report", s.handleTaskReport)
		// Конечная точка для ручного исправления автора цитирования
		r.Put("/quotes/{name}/quoter", s.handleSetQuoter)
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// handleImport принимает файл экспорта и запускает импорт в фоне.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Разбор мультипарт-формы
	err := r.ParseMultipartForm(config.DefaultMaxUploadSizeMB << 20)
	if err != nil {
		http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Не удалось прочитать загруженный файл", http.StatusInternalServerError)
		return
	}

	// Генерация уникального идентификатора задачи
	taskID := uuid.NewString()
	label := header.Filename

	// Создание задачи в хранилище
	s.taskStore.CreateTask(taskID, 24*time.Hour) // TTL для записи о задаче

	// Запуск импорта в горутине
	go func() {
		s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

		// Создание контекста для задачи с таймаутом из конфигурации.
		taskCtx := context.Background()
		if s.cfg.Import.TaskTimeoutSeconds > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(context.Background(), time.Duration(s.cfg.Import.TaskTimeoutSeconds)*time.Second)
			defer cancel()
		}

		rep := NewTaskReporter(s.taskStore, taskID)
		summary, err := s.importer.Import(taskCtx, source.NewMemorySource(data), rep, label)
		if err != nil {
			s.taskStore.UpdateTaskError(taskID, err.Error())
			return
		}

		s.taskStore.UpdateTaskResult(taskID, *summary)
	}()

	// Возврат идентификатора задачи
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"task_id": taskID})
}

// handleTaskStatus возвращает статус и текущую строку прогресса задачи.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := s.taskStore.GetTask(taskID)
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"task_id":       task.ID,
		"status":        task.Status,
		"progress":      task.Progress,
		"error_message": task.ErrorMessage,
	})
}

// handleTaskReport возвращает итог и диагностику завершенной задачи.
func (s *Server) handleTaskReport(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := s.taskStore.GetTask(taskID)
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	if task.Status != TaskStatusCompleted && task.Status != TaskStatusFailed {
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return
	}

	// Получение параметров пагинации
	page := parseQueryInt(r, "page", 1)
	pageSize := parseQueryInt(r, "page_size", 50)

	startIndex := (page - 1) * pageSize
	endIndex := startIndex + pageSize
	if startIndex >= len(task.Diagnostics) {
		startIndex = len(task.Diagnostics)
		endIndex = len(task.Diagnostics)
	}
	if endIndex > len(task.Diagnostics) {
		endIndex = len(task.Diagnostics)
	}

	totalItems := len(task.Diagnostics)
	totalPages := (totalItems + pageSize - 1) / pageSize

	response := struct {
		Pagination struct {
			CurrentPage int `json:"current_page"`
			PageSize    int `json:"page_size"`
			TotalItems  int `json:"total_items"`
			TotalPages  int `json:"total_pages"`
		} `json:"pagination"`
		Summary     *domain.ImportSummary `json:"summary,omitempty"`
		Diagnostics []domain.Diagnostic   `json:"diagnostics"`
	}{
		Summary:     task.Summary,
		Diagnostics: task.Diagnostics[startIndex:endIndex],
	}
	response.Pagination.CurrentPage = page
	response.Pagination.PageSize = pageSize
	response.Pagination.TotalItems = totalItems
	response.Pagination.TotalPages = totalPages

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleSetQuoter переатрибутирует существующую цитату. Изменение идет в
// обход буфера мутаций хранилища: пока импорт накапливает пакет, ручная
// правка не должна зафиксировать его досрочно.
func (s *Server) handleSetQuoter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		QuoterID uint64 `json:"quoter_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Не удалось декодировать тело запроса", http.StatusBadRequest)
		return
	}

	quote, err := s.quotes.Quote(r.Context(), name)
	if err != nil {
		slog.Error("Failed to look up quote", "name", name, "error", err)
		http.Error(w, "Не удалось прочитать цитату", http.StatusInternalServerError)
		return
	}
	if quote == nil {
		http.Error(w, "Цитата не найдена", http.StatusNotFound)
		return
	}

	if err := s.quotes.SetQuoter(r.Context(), name, req.QuoterID); err != nil {
		slog.Error("Failed to change quote", "name", name, "error", err)
		http.Error(w, "Не удалось изменить цитату", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":      name,
		"quoter_id": req.QuoterID,
	})
}

// parseQueryInt разбирает положительный целочисленный параметр запроса.
func parseQueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
