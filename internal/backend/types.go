// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"github.com/shopspring/decimal"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string          `json:"message"`
	History []model.Message `json:"history"`
}

// ChatResponse is the reply to POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// quoteResponse is the reply to GET /api/quote/{symbol}.
type quoteResponse struct {
	Symbol        string           `json:"symbol"`
	CompanyName   string           `json:"company_name"`
	CurrentPrice  *decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal  `json:"previous_close"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"change_percent"`
	Currency      string           `json:"currency"`
}

// chartResponse is the reply to GET /api/chart/{symbol}.
type chartResponse struct {
	Symbol        string             `json:"symbol"`
	Period        string             `json:"period"`
	Data          []model.ChartPoint `json:"data"`
	CurrentPrice  decimal.Decimal    `json:"current_price"`
	ChangePercent decimal.Decimal    `json:"change_percent"`
}

// errorResponse is the FastAPI-style error body.
type errorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

func (e errorResponse) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}
