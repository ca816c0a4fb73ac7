package config

import (
	"testing"
	"time"

	"github.com/jredh-dev/pokeguess/internal/roundtoken"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ROUND_TOKEN_SECRET", "DAILY_TOKEN_SECRET", "POKEAPI_TIMEOUT", "WARMUP_WORKERS", "WARMUP_ON_START"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	if cfg.Server.Port != "8080" || cfg.PokeAPI.Timeout != 12*time.Second || cfg.TCGdex.CacheTTL != 24*time.Hour {
		t.Errorf("defaults = %+v", cfg)
	}
	if !cfg.Tokens.InsecureDefault || cfg.Tokens.RoundSecret != roundtoken.DevSecret {
		t.Errorf("unset secret should select the dev default: %+v", cfg.Tokens)
	}
	if cfg.Tokens.DailySecret == cfg.Tokens.RoundSecret {
		t.Error("daily secret should differ from the round secret")
	}
	if cfg.Warmup.Workers != 8 || !cfg.Warmup.OnStart {
		t.Errorf("warmup = %+v", cfg.Warmup)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ROUND_TOKEN_SECRET", "s3cret")
	t.Setenv("POKEAPI_TIMEOUT", "3s")
	t.Setenv("TCG_CACHE_SIZE", "16")
	t.Setenv("WARMUP_ON_START", "false")
	t.Setenv("NAME_INDEX_REFRESH", "not-a-duration")
	cfg := Load()

	if cfg.Server.Port != "9090" || !cfg.IsProduction() {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Tokens.InsecureDefault || cfg.Tokens.RoundSecret != "s3cret" || cfg.Tokens.DailySecret != "s3cret:daily" {
		t.Errorf("tokens = %+v", cfg.Tokens)
	}
	if cfg.PokeAPI.Timeout != 3*time.Second || cfg.TCGdex.CacheSize != 16 || cfg.Warmup.OnStart {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Names.Refresh != 30*time.Second {
		t.Errorf("bad duration should keep the default, got %v", cfg.Names.Refresh)
	}
}
