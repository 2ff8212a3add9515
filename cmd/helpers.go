package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/docchat-app/docchat/internal/api"
	"github.com/docchat-app/docchat/internal/auth"
	"github.com/docchat-app/docchat/internal/config"
	"github.com/docchat-app/docchat/internal/docapi"
	"github.com/docchat-app/docchat/internal/store"
)

// loadConfig reads the configuration once per invocation. A broken
// config file is reported but never fatal: the built-in defaults carry
// the session.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Printf("config: %v (using defaults)", err)
		return config.Default()
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v (using defaults)", err)
		return config.Default()
	}
	return cfg
}

func openStore() (*store.Store, error) {
	path, err := store.DefaultPath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func newGateway(cfg *config.Config, st *store.Store) *auth.Gateway {
	apiKey := cfg.Firebase.APIKey
	if env := os.Getenv("DOCCHAT_FIREBASE_KEY"); env != "" {
		apiKey = env
	}
	provider := auth.NewProvider(apiKey)
	profiles := auth.NewProfileStore(cfg.Firebase.ProjectID)
	return auth.New(provider, profiles, st)
}

func newAPIClient(cfg *config.Config, gw *auth.Gateway) *api.Client {
	return api.New(cfg.API.Host, cfg.API.CustomHost, gw.TokenSource())
}

func newDocClient(cfg *config.Config) *docapi.Client {
	return docapi.New(cfg.DocAPI.Host + cfg.DocAPI.Base)
}

// requireAuth guards commands that need an active session.
func requireAuth(gw *auth.Gateway) error {
	if !gw.IsAuthenticated() {
		return fmt.Errorf("not signed in: run 'docchat login' first")
	}
	return nil
}

func debugf(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}
