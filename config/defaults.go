package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "scoutindex",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 10 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
				RequestTimeout:  2 * time.Second,
			},
			CORS: CORSConfig{
				Enabled:          false,
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID"},
				AllowCredentials: false,
				MaxAge:           300,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Data: DataConfig{
			Root:              "./data",
			LexiconPath:       "index/lexicon_complete.json",
			ForwardIndexPath:  "index/forward_index_termid.json",
			BarrelsDir:        "index/barrels",
			RoutingTablePath:  "term_to_barrel_map.json",
			MarketValueDir:    "raw/player_latest_market_value",
			ProfilesPath:      "processed/complete_player_profiles.json",
		},
		Index: IndexConfig{
			BarrelCacheSize:          10,
			InitialShards:            8,
			QueryBudgetMS:            500,
			AddDocumentBudgetSeconds: 60,
			BM25: BM25Config{
				K1: 1.2,
				B:  0.75,
			},
			Boosts: BoostConfig{
				NameTokenHit:        0.75,
				NameExactMatch:      3.0,
				NamePrefixMatch:     1.25,
				RawSubstringMatch:   0.25,
				NoNameMatchPenalty:  -1.5,
				MarketValueWeight:   12.0,
				ProfileLengthWeight: 4.0,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "stdout",
			SampleRate: 0.1,
		},
	}
}
