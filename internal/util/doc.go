// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the markyt packages.
//
// # Key Functions
//
// String Utilities:
//   - Ellipsize: keep the first N runes and mark the cut (conversation titles)
//   - TruncateRunes: fit text into a fixed-width column
//   - SingleLine: flatten multi-line text for list rows
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.Ellipsize(firstUserMessage, 50)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
