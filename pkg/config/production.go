package config

func loadProductionConfig(cfg *Config) {
	cfg.DatabaseDebug = false
	cfg.DatabaseFilePath = "/data/openshelf.sqlite"
	cfg.MediaDir = "/data/media"
	cfg.ServerHost = "0.0.0.0"
}
