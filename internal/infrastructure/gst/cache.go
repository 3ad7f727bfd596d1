package gst

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	appgst "github.com/jhoicas/gst-billing-api/internal/application/gst"
)

const cachePrefix = "gst-billing:gstin:"

// CachedClient guarda en Redis las consultas exitosas. Los "no encontrado" no se guardan.
// Un fallo de Redis no bloquea la consulta: se registra y se va al cliente externo.
type CachedClient struct {
	inner  appgst.LookupClient
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedClient con client nil devuelve inner sin envolver.
func NewCachedClient(inner appgst.LookupClient, client *redis.Client, ttl time.Duration, log zerolog.Logger) appgst.LookupClient {
	if client == nil || ttl <= 0 {
		return inner
	}
	return &CachedClient{inner: inner, client: client, ttl: ttl, log: log}
}

func (c *CachedClient) Lookup(ctx context.Context, gstin string) (*dto.GSTDetailsResponse, error) {
	key := cachePrefix + gstin
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached dto.GSTDetailsResponse
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Msg("cache GSTIN no disponible")
	}

	details, err := c.inner.Lookup(ctx, gstin)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(details); err == nil {
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("no se pudo guardar GSTIN en cache")
		}
	}
	return details, nil
}
