package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"solana_liquidity/internal/app/port"
	"solana_liquidity/internal/domain/entity"
	dexwire "solana_liquidity/internal/entity"
	"solana_liquidity/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DEXClientOptions tunes the DEX REST client.
type DEXClientOptions struct {
	// Timeout bounds a request that carries no context deadline. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	// CacheTTL enables a response cache keyed by endpoint URL when positive.
	CacheTTL          time.Duration
	CacheCleanupEvery time.Duration
	Metrics           *metrics.Metrics
}

// dexClientImpl is the fasthttp implementation of port.DEXClient.
type dexClientImpl struct {
	client    *fasthttp.Client
	defs      port.DEXDefinitionProvider
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
	cache     *cache.Cache
	metrics   *metrics.Metrics
}

// NewDEXClient creates a new DEX REST client resolving endpoints through defs.
func NewDEXClient(defs port.DEXDefinitionProvider, logger *zap.Logger, opts DEXClientOptions) port.DEXClient {
	c := &dexClientImpl{
		client:    &fasthttp.Client{Name: opts.UserAgent},
		defs:      defs,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		logger:    logger.Named("DEXClient"),
		metrics:   opts.Metrics,
	}
	if opts.CacheTTL > 0 {
		cleanup := opts.CacheCleanupEvery
		if cleanup <= 0 {
			cleanup = 2 * opts.CacheTTL
		}
		c.cache = cache.New(opts.CacheTTL, cleanup)
		c.logger.Info("Provider response cache enabled", zap.Duration("ttl", opts.CacheTTL))
	}
	return c
}

// GetRaydiumPairs implements port.DEXClient.
func (c *dexClientImpl) GetRaydiumPairs(ctx context.Context) ([]dexwire.RaydiumPair, error) {
	body, url, err := c.fetchPairs(ctx, entity.DEXRaydium)
	if err != nil {
		return nil, err
	}

	pairs, skipped, err := decodeArrayField[dexwire.RaydiumPair](body, "data")
	if err != nil {
		c.logger.Error("Failed to unmarshal Raydium pairs response", zap.String("url", url), zap.Error(err))
		return nil, &entity.FetchError{Op: "decode " + url, Err: err}
	}
	c.warnSkipped(url, skipped)
	c.logger.Debug("Fetched Raydium pairs", zap.Int("pairCount", len(pairs)))
	return pairs, nil
}

// GetOrcaWhirlpools implements port.DEXClient.
func (c *dexClientImpl) GetOrcaWhirlpools(ctx context.Context) ([]dexwire.OrcaWhirlpool, error) {
	body, url, err := c.fetchPairs(ctx, entity.DEXOrca)
	if err != nil {
		return nil, err
	}

	pools, skipped, err := decodeArrayField[dexwire.OrcaWhirlpool](body, "whirlpools")
	if err != nil {
		c.logger.Error("Failed to unmarshal Orca whirlpool response", zap.String("url", url), zap.Error(err))
		return nil, &entity.FetchError{Op: "decode " + url, Err: err}
	}
	c.warnSkipped(url, skipped)
	c.logger.Debug("Fetched Orca whirlpools", zap.Int("poolCount", len(pools)))
	return pools, nil
}

func (c *dexClientImpl) fetchPairs(ctx context.Context, dex entity.DEX) ([]byte, string, error) {
	def, ok := c.defs.GetDEXDefinition(dex)
	if !ok || def.PairsURL == "" {
		return nil, "", &entity.FetchError{
			Op:  fmt.Sprintf("resolve %s endpoint", dex),
			Err: errors.New("no pairs endpoint configured"),
		}
	}
	body, err := c.get(ctx, string(dex), def.PairsURL)
	return body, def.PairsURL, err
}

func (c *dexClientImpl) get(ctx context.Context, source, requestURL string) ([]byte, error) {
	if c.cache != nil {
		if cached, found := c.cache.Get(requestURL); found {
			if body, ok := cached.([]byte); ok {
				c.metrics.IncCacheHit(source)
				c.logger.Debug("Serving provider response from cache", zap.String("url", requestURL))
				return body, nil
			}
		}
	}

	op := "GET " + requestURL
	if err := ctx.Err(); err != nil {
		return nil, &entity.FetchError{Op: op, Err: err}
	}

	c.logger.Debug("Requesting DEX provider", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	// Дедлайн контекста важнее таймаута из конфига; нулевой таймаут означает без ограничения
	var err error
	switch deadline, ok := ctx.Deadline(); {
	case ok:
		err = c.client.DoDeadline(req, resp, deadline)
	case c.timeout > 0:
		err = c.client.DoTimeout(req, resp, c.timeout)
	default:
		err = c.client.Do(req, resp)
	}
	if err != nil {
		c.metrics.IncUpstream(source, "error")
		c.logger.Error("Failed to execute request to DEX provider", zap.String("url", requestURL), zap.Error(err))
		return nil, &entity.FetchError{Op: op, Err: err}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.metrics.IncUpstream(source, "bad_status")
		c.logger.Error("DEX provider request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", truncate(resp.Body(), 512)),
		)
		return nil, &entity.FetchError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}
	c.metrics.IncUpstream(source, "ok")

	// resp is released on return; keep our own copy of the body.
	body := append([]byte(nil), resp.Body()...)
	if c.cache != nil {
		c.cache.Set(requestURL, body, cache.DefaultExpiration)
	}
	return body, nil
}

// decodeArrayField decodes the array stored under field of a top-level JSON object.
// A missing or non-array field, or a non-object document, yields an empty slice.
// Elements that do not fit T are skipped and reported through skipped, one error
// per element, so one malformed entry never hides the rest of the listing.
func decodeArrayField[T any](body []byte, field string) (items []T, skipped []error, err error) {
	items = []T{}
	if !json.Valid(body) {
		return nil, nil, errors.New("response is not valid JSON")
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return items, nil, nil
	}

	var envelope map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, nil, err
	}
	raw, ok := envelope[field]
	if !ok {
		return items, nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return items, nil, nil
	}

	// Каждый элемент декодируется отдельно, битый элемент не ломает весь список
	var elements []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, nil, err
	}
	items = make([]T, 0, len(elements))
	for i, element := range elements {
		var item T
		if err := json.Unmarshal(element, &item); err != nil {
			skipped = append(skipped, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func (c *dexClientImpl) warnSkipped(url string, skipped []error) {
	if len(skipped) == 0 {
		return
	}
	c.logger.Warn("Skipped malformed provider entries",
		zap.String("url", url),
		zap.Int("skipped", len(skipped)),
		zap.Error(errors.Join(skipped...)),
	)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
