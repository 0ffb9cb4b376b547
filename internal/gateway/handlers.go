package gateway

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mfcastro/juniorbot/internal/channel/whatsapp"
	"github.com/mfcastro/juniorbot/internal/domain"
	"github.com/mfcastro/juniorbot/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.conversations.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.conversations.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "Conversa não encontrada")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Mensagem inválida")
		return
	}

	id := chi.URLParam(r, "id")
	conv, err := s.conversations.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "Conversa não encontrada")
		return
	}

	// Record the operator's message before attempting delivery.
	if err := s.conversations.AppendMessage(id, domain.Message{
		Sender: domain.SenderBot,
		Text:   req.Message,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var warning string
	if err := s.dispatcher.SendOne(r.Context(), whatsapp.NormalizeUser(conv.Phone), req.Message); err != nil {
		s.log.Warn().Err(err).Str("conversation", id).Msg("reply delivery failed")
		warning = err.Error()
	}

	conv, err = s.conversations.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if warning != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"conversation": conv,
			"warning":      warning,
		})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleAbandonedCarts(w http.ResponseWriter, r *http.Request) {
	carts, err := s.commerce.ListAbandonedCarts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if carts == nil {
		carts = []domain.Cart{}
	}
	writeJSON(w, http.StatusOK, carts)
}

func (s *Server) handleRecoverCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cart, err := s.commerce.GetCart(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cart == nil {
		writeError(w, http.StatusNotFound, "Carrinho não encontrado")
		return
	}

	if err := s.commerce.MarkCartRecovered(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cart.Recovered = true

	// Recovery nudge is best effort; the cart stays recovered either way.
	msg := "Olá " + cart.Customer + "! Notamos que você deixou alguns itens no carrinho. " +
		"Que tal finalizar sua compra? Seu carrinho está esperando por você!"
	if err := s.dispatcher.SendOne(r.Context(), whatsapp.NormalizeUser(cart.Phone), msg); err != nil {
		s.log.Warn().Err(err).Str("cart", id).Msg("recovery message failed")
	}

	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.commerce.ListOrders()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.commerce.SalesStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats.TotalConversations, err = s.conversations.Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if stats.TotalSales > 0 && stats.TotalConversations > 0 {
		rate := float64(stats.TotalSales) / float64(stats.TotalConversations) * 100
		stats.ConversionRate = math.Round(rate*10) / 10
	}
	stats.ResponseTimeAvg = responseTimeAvg
	stats.RevenueGrowth = revenueGrowth
	if stats.ProductsSold == nil {
		stats.ProductsSold = []domain.ProductSales{}
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "Nome e telefone são obrigatórios")
		return
	}

	conv := &domain.Conversation{
		Customer: req.Name,
		Phone:    req.Phone,
		Messages: []domain.Message{{
			Sender: domain.SenderBot,
			Text:   "Olá! Como posso ajudar você hoje?",
		}},
	}
	if err := s.conversations.Create(conv); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	welcome := "Olá " + req.Name + "! Obrigado por entrar em contato. Como posso ajudar você hoje?"
	if err := s.dispatcher.SendOne(r.Context(), whatsapp.NormalizeUser(req.Phone), welcome); err != nil {
		s.log.Warn().Err(err).Str("phone", req.Phone).Msg("welcome message failed")
	}

	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleBulkSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Numbers []string `json:"numbers"`
		Message string   `json:"message"`
		DelayMS *int     `json:"delayMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Numbers) == 0 || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Números e mensagem são obrigatórios")
		return
	}

	delay := s.dispatcher.DefaultDelay()
	if req.DelayMS != nil {
		delay = time.Duration(*req.DelayMS) * time.Millisecond
	}

	report := s.dispatcher.SendBulk(r.Context(), req.Numbers, req.Message, delay)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExtractGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GroupID == "" {
		writeError(w, http.StatusBadRequest, "Identificador do grupo é obrigatório")
		return
	}

	writeJSON(w, http.StatusOK, s.roster.ExtractGroupNumbers(r.Context(), req.GroupID))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string   `json:"name"`
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || len(req.Participants) == 0 {
		writeError(w, http.StatusBadRequest, "Nome e participantes são obrigatórios")
		return
	}

	writeJSON(w, http.StatusOK, s.roster.CreateGroup(r.Context(), req.Name, req.Participants))
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Status())
}
