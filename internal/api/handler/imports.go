package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/traffic-insights-import/internal/config"
	"github.com/vfg2006/traffic-insights-import/internal/schema"
	"github.com/vfg2006/traffic-insights-import/internal/usecases/importing"
	"github.com/vfg2006/traffic-insights-import/pkg/apiErrors"
	"github.com/vfg2006/traffic-insights-import/pkg/log"
	"github.com/vfg2006/traffic-insights-import/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Limite de memória do parse multipart; o excedente vai para disco
const multipartMemory = 8 << 20

var allowedExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".txt":  true,
	".xlsx": true,
}

// ImportFile recebe o arquivo e responde com um stream NDJSON de eventos de progresso.
// Erros de validação antes do primeiro evento respondem 400 com a lista de violações.
func ImportFile(service importing.Service, cfg config.Import) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		if cfg.MaxUploadMB > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadMB<<20)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, "Arquivo acima do limite permitido", map[string]any{"maxUploadMB": cfg.MaxUploadMB})
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Requisição multipart inválida", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		path, err := saveUpload(r, cfg.UploadDir)
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			logger.WithError(err).Error("Erro ao salvar o arquivo enviado")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao salvar o arquivo enviado", nil)
			return
		}

		stream := newNDJSONWriter(w)
		_, err = service.Import(r.Context(), importing.Request{
			SourceType: r.FormValue("dataType"),
			Scope:      r.FormValue("clientId"),
			FilePath:   path,
			RemoveFile: path != "",
		}, importing.NewStreamReporter(stream))
		if err == nil {
			return
		}

		// O evento de falha já foi enviado pelo stream
		if stream.started {
			return
		}
		writeImportError(w, err)
	})
}

// saveUpload grava o arquivo em disco com nome aleatório; a extensão original é
// mantida porque planilhas são reconhecidas por ela quando o conteúdo é ambíguo
func saveUpload(r *http.Request, dir string) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		ext = ""
	}

	path := filepath.Join(dir, utils.GenerateID()+ext)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}

	return path, out.Close()
}

func writeImportError(w http.ResponseWriter, err error) {
	var validationErr *importing.ValidationError
	if errors.As(err, &validationErr) {
		apiErrors.WriteError(w, validationErr.Code, validationErr.Error(), validationErr.Violations)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao processar a importação", nil)
}

// ndjsonWriter define os cabeçalhos do stream na primeira escrita, para que erros
// anteriores ainda possam responder com o status adequado
type ndjsonWriter struct {
	w       http.ResponseWriter
	started bool
}

func newNDJSONWriter(w http.ResponseWriter) *ndjsonWriter {
	return &ndjsonWriter{w: w}
}

func (n *ndjsonWriter) Write(p []byte) (int, error) {
	if !n.started {
		n.started = true
		n.w.Header().Set("Content-Type", "application/x-ndjson")
		n.w.Header().Set("Cache-Control", "no-cache")
		n.w.Header().Set("X-Content-Type-Options", "nosniff")
		n.w.WriteHeader(http.StatusOK)
	}
	return n.w.Write(p)
}

func (n *ndjsonWriter) Flush() {
	if err := http.NewResponseController(n.w).Flush(); err != nil {
		log.L.WithError(err).Debug("Stream sem suporte a flush")
	}
}

// GetImportSummary devolve o resumo da tabela do tipo de dado para uma conta (ou all)
func GetImportSummary(service importing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dataType := httprouter.ParamsFromContext(r.Context()).ByName("dataType")
		clientID := r.URL.Query().Get("clientId")

		rollup, err := service.Summary(r.Context(), dataType, clientID)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao calcular o resumo da importação")
			writeImportError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rollup); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}

type fieldResponse struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Derived  bool     `json:"derived,omitempty"`
	Headers  []string `json:"headers"`
}

type schemaResponse struct {
	SourceType      string               `json:"sourceType"`
	Tables          []string             `json:"tables"`
	RequiredColumns []string             `json:"requiredColumns"`
	Fields          []fieldResponse      `json:"fields"`
	Quality         schema.QualityConfig `json:"quality"`
}

// ListImportSchemas lista os tipos de dado aceitos e as colunas esperadas
func ListImportSchemas(service importing.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defs := service.Schemas()

		response := make([]schemaResponse, 0, len(defs))
		for _, def := range defs {
			item := schemaResponse{
				SourceType:      def.SourceType,
				Tables:          def.Tables,
				RequiredColumns: def.RequiredColumns(),
				Quality:         def.Quality,
			}
			for _, f := range def.Fields {
				item.Fields = append(item.Fields, fieldResponse{
					Name:     f.Name,
					Kind:     f.Kind.String(),
					Required: f.Required,
					Derived:  f.Derived,
					Headers:  f.Headers,
				})
			}
			response = append(response, item)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao codificar resposta", nil)
		}
	})
}
