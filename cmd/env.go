package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Liancohen0104/Rentmate/internal/auth"
	"github.com/Liancohen0104/Rentmate/internal/match"
	"github.com/Liancohen0104/Rentmate/internal/store"
	"github.com/Liancohen0104/Rentmate/pkg/anthropic"
	"github.com/Liancohen0104/Rentmate/pkg/geocode"
)

// env bundles the shared runtime pieces commands build on.
type env struct {
	Store    store.Store
	Auth     *auth.Manager
	Pipeline *match.Pipeline
	Geocoder *geocode.Geocoder
}

func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// initEnv opens the store and wires the ranking pipeline. A missing
// Anthropic key leaves the pipeline in its unranked passthrough mode
// instead of failing startup.
func initEnv(ctx context.Context) (*env, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	mgr, err := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "init auth")
	}

	var oracle match.Oracle
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		oracle = match.NewClaudeOracle(client, cfg.Anthropic.Model, time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second)
	} else {
		zap.L().Warn("no anthropic key configured, match results will not be scored")
	}

	var geocoder *geocode.Geocoder
	if cfg.Geocode.GoogleKey != "" {
		geocoder = geocode.New(cfg.Geocode.GoogleKey)
	}

	return &env{
		Store:    st,
		Auth:     mgr,
		Pipeline: match.New(oracle),
		Geocoder: geocoder,
	}, nil
}
