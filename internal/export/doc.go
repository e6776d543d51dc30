// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders saved conversations as Markdown, JSON or HTML.
//
// # Usage
//
//	exporter, err := export.New(export.FormatForPath(path), export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	err = export.WriteFile(conv, exporter, path)
package export
