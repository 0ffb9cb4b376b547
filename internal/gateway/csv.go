package gateway

import (
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/mfcastro/juniorbot/internal/domain"
)

const maxCSVUpload = 5 << 20 // 5 MiB

// handleUploadCSV imports leads from a multipart CSV upload. Rows are
// name,phone pairs; a header row is skipped when detected. Rows that fail
// (missing fields, duplicate phone) are counted, not fatal.
func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCSVUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Arquivo inválido")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Campo 'file' é obrigatório")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	imported, skipped := 0, 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "CSV malformado: "+err.Error())
			return
		}

		if first {
			first = false
			if isCSVHeader(record) {
				continue
			}
		}
		if len(record) < 2 {
			skipped++
			continue
		}

		name := strings.TrimSpace(record[0])
		phone := strings.TrimSpace(record[1])
		if name == "" || phone == "" {
			skipped++
			continue
		}

		conv := &domain.Conversation{
			Customer: name,
			Phone:    phone,
			Messages: []domain.Message{{
				Sender: domain.SenderBot,
				Text:   "Olá! Como posso ajudar você hoje?",
			}},
		}
		if err := s.conversations.Create(conv); err != nil {
			s.log.Warn().Err(err).Str("phone", phone).Msg("csv lead skipped")
			skipped++
			continue
		}
		imported++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "CSV processado com sucesso",
		"imported": imported,
		"skipped":  skipped,
	})
}

func isCSVHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	second := strings.ToLower(strings.TrimSpace(record[1]))
	return (first == "name" || first == "nome") && (second == "phone" || second == "telefone")
}
