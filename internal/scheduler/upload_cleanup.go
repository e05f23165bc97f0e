package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/config"
)

// UploadCleanupConfig representa a configuração da limpeza de uploads temporários
type UploadCleanupConfig struct {
	CronSchedule string
	UploadDir    string
	MaxAge       time.Duration
	Enabled      bool
}

// UploadCleanupService remove do diretório de uploads os arquivos esquecidos por
// importações interrompidas (queda do processo antes da remoção do temporário)
type UploadCleanupService struct {
	scheduler *gocron.Scheduler
	config    UploadCleanupConfig
	now       func() time.Time

	runMutex         sync.Mutex
	running          bool
	lastRunStartedAt time.Time
	lastRunEndedAt   time.Time
	lastRemoved      int
	lastError        string
}

// NewUploadCleanupService cria uma nova instância do serviço de limpeza
func NewUploadCleanupService(appConfig *config.Config) *UploadCleanupService {
	cleanupConfig := UploadCleanupConfig{
		CronSchedule: appConfig.UploadCleanup.CronSchedule,
		UploadDir:    appConfig.Import.UploadDir,
		MaxAge:       appConfig.UploadCleanup.MaxAge,
		Enabled:      appConfig.UploadCleanup.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": cleanupConfig.CronSchedule,
		"upload_dir":    cleanupConfig.UploadDir,
		"max_age":       cleanupConfig.MaxAge.String(),
		"enabled":       cleanupConfig.Enabled,
	}).Info("Configuração da limpeza de uploads carregada")

	return &UploadCleanupService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    cleanupConfig,
		now:       time.Now,
	}
}

// Start inicia o agendador
func (s *UploadCleanupService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Limpeza de uploads desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de limpeza de uploads")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.run()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de uploads: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de limpeza de uploads")
		s.scheduler.Stop()
	}()

	return nil
}

// run executa uma limpeza, ignorando disparos enquanto outra estiver em andamento
func (s *UploadCleanupService) run() {
	s.runMutex.Lock()
	if s.running {
		s.runMutex.Unlock()
		logrus.Info("Limpeza de uploads já em andamento, ignorando")
		return
	}
	s.running = true
	s.lastRunStartedAt = s.now()
	s.runMutex.Unlock()

	removed, err := s.Cleanup()

	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	s.running = false
	s.lastRunEndedAt = s.now()
	s.lastRemoved = removed
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

// Cleanup remove os arquivos do diretório de uploads mais antigos que MaxAge.
// Subdiretórios não são percorridos.
func (s *UploadCleanupService) Cleanup() (int, error) {
	entries, err := os.ReadDir(s.config.UploadDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		logrus.WithError(err).Error("Erro ao listar o diretório de uploads")
		return 0, fmt.Errorf("erro ao listar %s: %w", s.config.UploadDir, err)
	}

	cutoff := s.now().Add(-s.config.MaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.config.UploadDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("Não foi possível remover upload antigo")
			continue
		}
		removed++
	}

	logrus.WithFields(logrus.Fields{
		"removed": removed,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Limpeza de uploads concluída")

	return removed, nil
}

// TriggerManualRun inicia manualmente uma limpeza
func (s *UploadCleanupService) TriggerManualRun() {
	s.runMutex.Lock()
	if s.running {
		s.runMutex.Unlock()
		logrus.Info("Limpeza de uploads já em andamento, ignorando solicitação manual")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Iniciando limpeza manual de uploads")
	go s.run()
}

// GetStatus retorna o status atual do agendador
func (s *UploadCleanupService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return map[string]any{
		"enabled":             s.config.Enabled,
		"cron":                s.config.CronSchedule,
		"upload_dir":          s.config.UploadDir,
		"max_age":             s.config.MaxAge.String(),
		"running":             s.running,
		"last_run_started_at": s.lastRunStartedAt,
		"last_run_ended_at":   s.lastRunEndedAt,
		"last_removed":        s.lastRemoved,
		"last_error":          s.lastError,
	}
}
