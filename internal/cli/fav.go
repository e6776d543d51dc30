// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// fav.go - Favorites (watchlist) management.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/storage"
	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/symbol"
)

// Fav handles "markyt fav <ls|add|rm|toggle|clear>".
func (a *App) Fav(ctx context.Context, args Args) error {
	switch args.Subcommand {
	case "", "ls", "list":
		return a.favList()
	case "add":
		return a.favApply(args, "add", a.Favorites.Add)
	case "toggle":
		return a.favApply(args, "toggle", a.Favorites.Toggle)
	case "rm", "remove", "del", "delete":
		return a.favRemove(args)
	case "clear":
		a.Favorites.Clear()
		if a.JSON {
			return a.printJSON("fav", FavoritesData{Action: "clear", Favorites: a.Favorites.List()})
		}
		fmt.Fprintln(a.out(), SuccessStyle.Render("Favorites cleared"))
		return nil
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown fav subcommand: %s", args.Subcommand),
			Usage:   "markyt fav [ls|add|rm|toggle|clear] [symbols...]",
		}
	}
}

func (a *App) favList() error {
	favs := a.Favorites.List()
	if a.JSON {
		return a.printJSON("fav", FavoritesData{Favorites: favs})
	}
	if len(favs) == 0 {
		fmt.Fprintln(a.out(), DimStyle.Render("No favorites yet. Add one with: markyt fav add AAPL"))
		return nil
	}

	fmt.Fprintln(a.out(), TitleStyle.Render(fmt.Sprintf("Favorites (%d/%d)", len(favs), model.MaxFavorites)))
	t := newTable("#", "SYMBOL", "ADDED").alignRight(0)
	for i, f := range favs {
		t.addRow(strconv.Itoa(i+1), f.Symbol, f.AddedAt.Local().Format(time.DateTime))
	}
	t.render(a.out())
	return nil
}

// favApply runs op for every symbol on the command line and reports each
// outcome. The first failure is returned after all symbols are tried.
func (a *App) favApply(args Args, action string, op func(string) storage.Result) error {
	inputs := symbolInputs(args.Symbols)
	if len(inputs) == 0 {
		return ErrMissingArgument("symbol", "markyt fav "+action+" AAPL")
	}

	var firstErr error
	var last storage.Result
	for _, in := range inputs {
		res := op(symbol.Resolve(in))
		last = res
		if err := res.Err(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", in, err)
			}
			if !a.JSON {
				fmt.Fprintf(a.errOut(), "%s %s: %v\n", ErrorStyle.Render("x"), in, err)
			}
			continue
		}
		if !a.JSON {
			fmt.Fprintln(a.out(), describeResult(res))
		}
	}

	if a.JSON {
		if firstErr != nil {
			return firstErr
		}
		return a.printJSON("fav", FavoritesData{
			Action:    last.Action.String(),
			Symbol:    last.Symbol,
			Favorites: a.Favorites.List(),
		})
	}
	return firstErr
}

func (a *App) favRemove(args Args) error {
	inputs := symbolInputs(args.Symbols)
	if len(inputs) == 0 {
		return ErrMissingArgument("symbol", "markyt fav rm AAPL")
	}

	var firstErr error
	for _, in := range inputs {
		sym := symbol.Resolve(in)
		if !a.Favorites.Remove(sym) {
			err := &NotFoundError{Resource: "favorite", ID: sym}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !a.JSON {
			fmt.Fprintln(a.out(), SuccessStyle.Render("Removed "+sym))
		}
	}
	if a.JSON && firstErr == nil {
		return a.printJSON("fav", FavoritesData{Action: "removed", Favorites: a.Favorites.List()})
	}
	return firstErr
}

func describeResult(res storage.Result) string {
	switch res.Action {
	case storage.ActionAdded:
		return SuccessStyle.Render("Added " + res.Symbol)
	case storage.ActionRemoved:
		return SuccessStyle.Render("Removed " + res.Symbol)
	default:
		return res.Symbol
	}
}

// symbolInputs treats the arguments as one company name when together they
// name a known company ("coca cola"), and as separate symbols otherwise.
func symbolInputs(args []string) []string {
	if len(args) > 1 {
		joined := strings.Join(args, " ")
		if symbol.Known(joined) {
			return []string{joined}
		}
	}
	return args
}
