// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Markyt API.
//
// The API exposes three endpoints:
//
//   - POST /api/chat: completion for a message plus prior history
//   - GET /api/quote/{symbol}: latest price snapshot
//   - GET /api/chart/{symbol}?period=&interval=: price history
//
// Every failure is a *ClientError whose Type tells connection problems,
// timeouts, bad statuses and undecodable bodies apart. GET requests are
// retried with exponential backoff; all requests pass a rate limiter.
package backend
