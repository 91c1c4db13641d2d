package handler

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

import (
	"context"
	"fmt"
	"net/http"

	"auction-sync/internal/display"
	"auction-sync/internal/engine"
	"auction-sync/internal/models"
	"auction-sync/internal/mutation"
	"auction-sync/services/auction/helpers"
	"auction-sync/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	Lots() engine.LotsEvent
	OpenLot(ctx context.Context, lotID string) (display.LotView, error)
	CloseLot(lotID string) bool
	PlaceBid(ctx context.Context, lotID string, amount int64) (models.MutationResult, error)
	SetAutoBid(ctx context.Context, lotID string, maxAmount int64) (models.MutationResult, error)
	Admin(ctx context.Context, action models.AdminAction) (models.MutationResult, error)
	MutationState(key string) mutation.ActionState
	Acknowledge(key string) error
	Viewer() models.Viewer
	SetViewer(v models.Viewer) models.Viewer
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// HealthHandler handles GET /health
func (h *AuctionHandler) HealthHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, gin.H{"state": h.service.Lots().State}, "ok")
}

// ListLotsHandler handles GET /lots
func (h *AuctionHandler) ListLotsHandler(c *gin.Context) {
	ev := h.service.Lots()
	if ev.Lots == nil {
		ev.Lots = []display.LotView{}
	}
	utils.JSONResponse(c, http.StatusOK, ev, "lots retrieved successfully")
}

// GetLotHandler handles GET /lots/:lot_id
func (h *AuctionHandler) GetLotHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	view, err := h.service.OpenLot(c.Request.Context(), lotID)
	if err != nil {
		h.fail(c, "GetLotHandler", err, map[string]any{"lot_id": lotID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, view, "lot retrieved successfully")
	helpers.LogSuccess("GetLotHandler", "lot opened", map[string]any{"lot_id": lotID, "status": view.Status})
}

// CloseLotHandler handles DELETE /lots/:lot_id/view
func (h *AuctionHandler) CloseLotHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	closed := h.service.CloseLot(lotID)
	utils.JSONResponse(c, http.StatusOK, gin.H{"lotId": lotID, "closed": closed}, "lot view closed")
}

// PlaceBidHandler handles POST /lots/:lot_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	res, err := h.service.PlaceBid(c.Request.Context(), lotID, req.Amount)
	if err != nil {
		h.fail(c, "PlaceBidHandler", err, map[string]any{"lot_id": lotID, "amount": req.Amount})
		return
	}

	helpers.WriteMutationResult(c, mutation.BidKey(lotID), res, "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid settled", map[string]any{
		"lot_id":  lotID,
		"amount":  req.Amount,
		"outcome": res.Outcome,
	})
}

// SetAutoBidHandler handles POST /lots/:lot_id/autobid
func (h *AuctionHandler) SetAutoBidHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	var req helpers.AutoBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetAutoBidHandler", err)
		return
	}

	res, err := h.service.SetAutoBid(c.Request.Context(), lotID, req.MaxAmount)
	if err != nil {
		h.fail(c, "SetAutoBidHandler", err, map[string]any{"lot_id": lotID, "max_amount": req.MaxAmount})
		return
	}

	helpers.WriteMutationResult(c, mutation.AutoBidKey(lotID), res, "auto-bid accepted")
	helpers.LogSuccess("SetAutoBidHandler", "auto-bid settled", map[string]any{
		"lot_id":     lotID,
		"max_amount": req.MaxAmount,
		"outcome":    res.Outcome,
	})
}

// AdminHandler handles POST /admin/lots
func (h *AuctionHandler) AdminHandler(c *gin.Context) {
	var req helpers.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AdminHandler", err)
		return
	}

	action := req.ToAction()
	res, err := h.service.Admin(c.Request.Context(), action)
	if err != nil {
		h.fail(c, "AdminHandler", err, map[string]any{"action": req.Action, "lot_id": req.LotID})
		return
	}

	helpers.WriteMutationResult(c, mutation.AdminKey(action.Kind, action.LotID), res, "admin action accepted")
	helpers.LogSuccess("AdminHandler", "admin action settled", map[string]any{
		"action":  req.Action,
		"lot_id":  req.LotID,
		"outcome": res.Outcome,
	})
}

// GetMutationHandler handles GET /mutations/:key
func (h *AuctionHandler) GetMutationHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.service.MutationState(c.Param("key")), "mutation state retrieved successfully")
}

// AcknowledgeMutationHandler handles DELETE /mutations/:key
func (h *AuctionHandler) AcknowledgeMutationHandler(c *gin.Context) {
	key := c.Param("key")
	if err := h.service.Acknowledge(key); err != nil {
		h.fail(c, "AcknowledgeMutationHandler", err, map[string]any{"key": key})
		return
	}
	utils.JSONResponse(c, http.StatusOK, h.service.MutationState(key), "mutation acknowledged")
}

// GetViewerHandler handles GET /session/viewer
func (h *AuctionHandler) GetViewerHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.service.Viewer(), "viewer retrieved successfully")
}

// SetViewerHandler handles PUT /session/viewer
func (h *AuctionHandler) SetViewerHandler(c *gin.Context) {
	var req helpers.ViewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetViewerHandler", err)
		return
	}

	v := h.service.SetViewer(models.Viewer{ID: req.ID, Name: req.Name, Avatar: req.Avatar, IsAdmin: req.IsAdmin})
	utils.JSONResponse(c, http.StatusOK, v, "viewer updated")
	helpers.LogSuccess("SetViewerHandler", "viewer updated", map[string]any{"viewer_id": v.ID, "is_admin": v.IsAdmin})
}

func (h *AuctionHandler) fail(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request failed", fields)
}
