package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/madame-president/normaDB/internal/apperrors"
	"github.com/madame-president/normaDB/internal/service"
)

// FundHandler handles HTTP requests for fund endpoints. It is the HTTP
// adapter over FundService and SyncService; all derivation logic lives
// in the services.
type FundHandler struct {
	fundService *service.FundService
	syncService *service.SyncService
}

// NewFundHandler creates a new FundHandler with the provided service dependencies.
func NewFundHandler(fundService *service.FundService, syncService *service.SyncService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
		syncService: syncService,
	}
}

// Summary handles GET requests for the live fund snapshot.
//
// Endpoint: GET /api/fund/summary
// Response: 200 OK with FundSnapshot
// Error: 502 Bad Gateway when the live price API fails, 500 otherwise
func (h *FundHandler) Summary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.fundService.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// Ledger handles GET requests for the merged ledger, newest first.
//
// Endpoint: GET /api/fund/ledger
// Response: 200 OK with array of LedgerRow
func (h *FundHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	rows, err := h.fundService.Ledger(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// YearOne handles GET requests for the Year 1 performance report.
//
// Endpoint: GET /api/fund/year-one
// Response: 200 OK with YearOneSnapshot
// Error: 404 when the ledger is empty or no closing price is recorded
// for the window
func (h *FundHandler) YearOne(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.fundService.YearOne(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyLedger) || errors.Is(err, apperrors.ErrClosingPriceNotFound) {
			errorResponse := map[string]string{
				"error":  "year 1 report unavailable",
				"detail": err.Error(),
			}
			respondJSON(w, http.StatusNotFound, errorResponse)
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// Sync handles POST requests to run the full ingestion pipeline:
// transaction sync followed by price sync. Safe to call repeatedly.
//
// Endpoint: POST /api/fund/sync
// Response: 200 OK with SyncResult
// Error: 502 Bad Gateway when an upstream API fails
func (h *FundHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncService.Run(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ClosingPriceRequest is the body of POST /api/fund/closing-price.
type ClosingPriceRequest struct {
	WindowEndDate string  `json:"window_end_date"` // YYYY-MM-DD
	PriceCAD      float64 `json:"price_cad"`
}

// RecordClosingPrice handles POST requests to record a year-end closing
// price for a reporting window. The table is append-only; recording the
// same window twice returns 409.
//
// Endpoint: POST /api/fund/closing-price
// Response: 201 Created with the stored ClosingPrice
func (h *FundHandler) RecordClosingPrice(w http.ResponseWriter, r *http.Request) {
	var req ClosingPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse := map[string]string{
			"error":  "invalid request body",
			"detail": err.Error(),
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return
	}

	windowEnd, err := time.Parse("2006-01-02", req.WindowEndDate)
	if err != nil {
		errorResponse := map[string]string{
			"error":  apperrors.ErrInvalidDate.Error(),
			"detail": "window_end_date must be YYYY-MM-DD",
		}
		respondJSON(w, http.StatusBadRequest, errorResponse)
		return
	}

	cp, err := h.fundService.RecordClosingPrice(windowEnd, req.PriceCAD)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNegativeAmount):
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		case errors.Is(err, apperrors.ErrDuplicateClosingPrice):
			respondJSON(w, http.StatusConflict, map[string]string{
				"error": err.Error(),
			})
		default:
			respondServiceError(w, err)
		}
		return
	}

	respondJSON(w, http.StatusCreated, cp)
}

// ClosingPrices handles GET requests for all recorded closing prices.
//
// Endpoint: GET /api/fund/closing-price
// Response: 200 OK with array of ClosingPrice
func (h *FundHandler) ClosingPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.fundService.ClosingPrices()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, prices)
}

// respondServiceError maps service errors to status codes: upstream API
// failures become 502, everything else 500.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, apperrors.ErrExplorerRequestFailed) ||
		errors.Is(err, apperrors.ErrHistoricalPriceRequestFailed) ||
		errors.Is(err, apperrors.ErrHistoricalPriceMalformed) ||
		errors.Is(err, apperrors.ErrLivePriceRequestFailed) {
		status = http.StatusBadGateway
	}

	errorResponse := map[string]string{
		"error":  "request failed",
		"detail": err.Error(),
	}
	respondJSON(w, status, errorResponse)
}
