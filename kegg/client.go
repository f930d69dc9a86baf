package kegg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FredHutch/docker-eggnog-mapper/config"
)

// Die KEGG-Datenbanken, die wir abfragen.
const (
	DBOrtholog = "ko"
	DBReaction = "rn"
	DBPathway  = "path"
	DBCompound = "cpd"
	DBGlycan   = "gl"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ErrNotFound signalisiert, dass KEGG den Eintrag nicht kennt (HTTP 404).
// Wird nicht erneut versucht.
var ErrNotFound = errors.New("kegg entry not found")

// Client kapselt die Interaktion mit der KEGG REST API. Einträge werden
// pro Prozess gecacht, damit geteilte Reaktionen/Pathways/Compounds nur
// einmal geladen werden.
type Client struct {
	Config *config.Config
	Logger *zap.Logger

	cache *gocache.Cache
}

// NewClient erstellt einen neuen KEGG-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		Config: cfg,
		Logger: logger,
		cache:  gocache.New(time.Hour, 10*time.Minute),
	}
}

// Get holt einen Flat-File-Eintrag, z.B. Get(ctx, kegg.DBOrtholog, "K00844").
// Transiente Fehler werden mit exponentiellem Backoff erneut versucht,
// ErrNotFound ist endgültig.
func (c *Client) Get(ctx context.Context, database, id string) (Record, error) {
	key := database + ":" + id
	if cached, ok := c.cache.Get(key); ok {
		return cached.(Record), nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.Config.KeggMaxRetries; attempt++ {
		if attempt > 1 {
			backoff := 500 * time.Millisecond << (attempt - 2)
			c.Logger.Warn("KEGG-Abfrage fehlgeschlagen, versuche erneut",
				zap.String("entry", key),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		rec, err := c.fetch(ctx, key)
		if err == nil {
			c.cache.Set(key, rec, gocache.DefaultExpiration)
			return rec, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("kegg get %s: %w", key, lastErr)
}

func (c *Client) fetch(ctx context.Context, key string) (Record, error) {
	url := fmt.Sprintf("%s/get/%s", c.Config.KeggBaseURL, key)
	c.Logger.Debug("Rufe KEGG API auf", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("kegg request failed with status: %d", resp.StatusCode)
	}

	return ParseRecord(resp.Body)
}
