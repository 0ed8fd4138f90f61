package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"credit-service/internal/api/responses"
	"credit-service/internal/core/credit"
	"credit-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// CreditHandler lida com as requisições da API de análise de crédito.
type CreditHandler struct {
	service        credit.Service
	maxUploadBytes int64
}

// NewCreditHandler cria um novo handler de crédito. maxUploadBytes <= 0
// disables the upload size limit.
func NewCreditHandler(service credit.Service, maxUploadBytes int64) *CreditHandler {
	return &CreditHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the credit routes on the group.
func (h *CreditHandler) Register(group *gin.RouterGroup) {
	group.POST("/credit/analyze", h.HandleAnalyze)
	group.POST("/credit/agents", h.HandleAgents)
	group.POST("/credit/export", h.HandleExport)
	group.DELETE("/credit/cache", h.HandleResetCache)
}

// HandleAnalyze concilia a planilha enviada e devolve o relatório completo.
func (h *CreditHandler) HandleAnalyze(c *gin.Context) {
	file, filename, ok := h.openWorkbook(c)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.service.Analyze(file, filename, c.PostForm("agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses.Success(c, report, "Análise de crédito concluída com sucesso")
}

// HandleAgents lista os consultores disponíveis para filtro.
func (h *CreditHandler) HandleAgents(c *gin.Context) {
	file, filename, ok := h.openWorkbook(c)
	if !ok {
		return
	}
	defer file.Close()

	agents, err := h.service.ListAgents(file, filename)
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses.Success(c, gin.H{"agents": agents, "all": credit.AllAgentsLabel}, "Consultores carregados com sucesso")
}

// HandleExport devolve as contas conciliadas como CSV.
func (h *CreditHandler) HandleExport(c *gin.Context) {
	file, filename, ok := h.openWorkbook(c)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.service.Analyze(file, filename, c.PostForm("agent"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	outputCSV, err := h.service.ExportCSV(report)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o CSV", err.Error())
		return
	}

	fileName := fmt.Sprintf("CreditoClientes_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv; charset=windows-1252", outputCSV)
}

// HandleResetCache descarta as planilhas já processadas.
func (h *CreditHandler) HandleResetCache(c *gin.Context) {
	h.service.ResetCache()
	responses.Success(c, nil, "Cache de planilhas limpo")
}

// openWorkbook validates and opens the "workbookFile" upload. On failure the
// error response has already been written.
func (h *CreditHandler) openWorkbook(c *gin.Context) (multipart.File, string, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("workbookFile")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Arquivo excede o limite de %d MB", tooLarge.Limit>>20))
			return nil, "", false
		}
		responses.Error(c, http.StatusBadRequest, "Arquivo Excel (.xls, .xlsx) não encontrado ou inválido")
		return nil, "", false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" && ext != ".xlsm" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo excel não suportada: %s", ext))
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo Excel")
		return nil, "", false
	}
	return file, fileHeader.Filename, true
}

func (h *CreditHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFormat):
		responses.Error(c, http.StatusBadRequest, "Formato de planilha não suportado", err.Error())
	case errors.Is(err, domain.ErrMissingTable):
		responses.Error(c, http.StatusUnprocessableEntity, "A aba 'Report' não foi encontrada ou está vazia.", err.Error())
	default:
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar a planilha", err.Error())
	}
}
