package importing

import (
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-insights-import/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProgressReporter recebe os eventos de uma importação na ordem em que acontecem
type ProgressReporter interface {
	Progress(event domain.ProgressEvent)
	Quality(event domain.QualityEvent)
}

type flusher interface {
	Flush()
}

// StreamReporter escreve cada evento como uma linha JSON (NDJSON), descarregando o
// buffer a cada evento quando o destino permite
type StreamReporter struct {
	mu      sync.Mutex
	encoder *jsoniter.Encoder
	flusher flusher
	failed  bool
}

func NewStreamReporter(w io.Writer) *StreamReporter {
	r := &StreamReporter{encoder: json.NewEncoder(w)}
	if f, ok := w.(flusher); ok {
		r.flusher = f
	}
	return r
}

func (r *StreamReporter) Progress(event domain.ProgressEvent) {
	r.write(event)
}

func (r *StreamReporter) Quality(event domain.QualityEvent) {
	r.write(event)
}

func (r *StreamReporter) write(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Depois da primeira falha (cliente desconectado) os eventos são descartados
	if r.failed {
		return
	}

	if err := r.encoder.Encode(event); err != nil {
		r.failed = true
		logrus.WithField("error", err.Error()).Warn("Falha ao enviar evento de progresso, cliente provavelmente desconectado")
		return
	}

	if r.flusher != nil {
		r.flusher.Flush()
	}
}

// Failed informa se alguma escrita falhou
func (r *StreamReporter) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// DiscardReporter ignora todos os eventos
type DiscardReporter struct{}

func (DiscardReporter) Progress(domain.ProgressEvent) {}

func (DiscardReporter) Quality(domain.QualityEvent) {}
