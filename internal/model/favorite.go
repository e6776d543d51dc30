// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// MaxFavorites caps the size of the watchlist.
const MaxFavorites = 20

// Favorite is one watched ticker. Symbol is the normalized ticker and the
// entity's key; AddedAt never changes after insertion.
type Favorite struct {
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"addedAt"`
}
