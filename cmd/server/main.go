// pokeguess - multilingual Pokémon guessing games
// Copyright (C) 2025  pokeguess contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jredh-dev/pokeguess/config"
	"github.com/jredh-dev/pokeguess/internal/alias"
	"github.com/jredh-dev/pokeguess/internal/daily"
	"github.com/jredh-dev/pokeguess/internal/dex"
	"github.com/jredh-dev/pokeguess/internal/game"
	"github.com/jredh-dev/pokeguess/internal/handlers"
	"github.com/jredh-dev/pokeguess/internal/httpserver"
	"github.com/jredh-dev/pokeguess/internal/logger"
	"github.com/jredh-dev/pokeguess/internal/names"
	"github.com/jredh-dev/pokeguess/internal/pokeapi"
	"github.com/jredh-dev/pokeguess/internal/roundtoken"
	"github.com/jredh-dev/pokeguess/internal/tcgdex"
	"github.com/jredh-dev/pokeguess/internal/variant"
	"github.com/jredh-dev/pokeguess/internal/warmup"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pokeguess %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg := config.Load()
	log := logger.New(logger.ParseMode(cfg.Server.LogMode))

	if cfg.Tokens.InsecureDefault {
		if cfg.IsProduction() {
			log.Error("ROUND_TOKEN_SECRET must be set in production")
			os.Exit(1)
		}
		log.Warn("ROUND_TOKEN_SECRET not set, using the development secret")
	}

	vocab, err := variant.LoadVocabulary(cfg.VariantVocabulary)
	if err != nil {
		log.Error("load variant vocabulary", "path", cfg.VariantVocabulary, "err", err)
		os.Exit(1)
	}

	api := pokeapi.New(cfg.PokeAPI.BaseURL, cfg.PokeAPI.Timeout)
	svc := dex.NewService(api, log)
	cards := tcgdex.New(tcgdex.Options{
		BaseURL:   cfg.TCGdex.BaseURL,
		Timeout:   cfg.TCGdex.Timeout,
		CacheTTL:  cfg.TCGdex.CacheTTL,
		CacheSize: cfg.TCGdex.CacheSize,
		Logger:    log,
	})
	tokens := roundtoken.New(cfg.Tokens.RoundSecret)
	variants := variant.NewResolver(svc, vocab, log)

	engine := game.NewEngine(game.Deps{
		Catalog: svc,
		Details: svc,
		Media:   svc,
		Cards:   cards,
		Signer:  tokens,
		Modes:   game.NewRegistry(),
		Logger:  log,
	})
	verifier := game.NewVerifier(tokens, alias.NewBuilder(svc, svc, log), variants, log)

	index := names.New(svc, cfg.Names.Refresh, log)
	puzzle := daily.New(svc, index, variants, daily.NewTokens(cfg.Tokens.DailySecret), log)
	warmer := warmup.New(svc, cfg.Warmup.Workers, log)

	srv := httpserver.New(httpserver.Options{
		Logger:         log,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	srv.OnStop(index.Stop)
	srv.OnStop(warmer.Stop)

	h := handlers.New(handlers.Deps{
		Rounds:  engine,
		Guesses: verifier,
		Modes:   game.NewRegistry(),
		Names:   index,
		Daily:   puzzle,
		Warmer:  warmer,
		Logger:  log,
	})
	h.Routes(srv.Router)

	index.Start()
	if cfg.Warmup.OnStart {
		warmer.Schedule()
	}

	addr := ":" + cfg.Server.Port
	log.Info("pokeguess starting",
		"addr", addr,
		"version", version,
		"env", cfg.Server.Env,
	)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
