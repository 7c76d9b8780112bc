package exchange

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"CoinSentinel/internal/model"
)

// UpbitClient implements MarketData and Broker against the Upbit REST API.
type UpbitClient struct {
	client    *resty.Client
	accessKey string
	secretKey string
}

// NewUpbitClient creates a client for baseURL (the public API when empty).
// Quotation endpoints work without keys; order and account endpoints
// require them.
func NewUpbitClient(baseURL, accessKey, secretKey string) *UpbitClient {
	if baseURL == "" {
		baseURL = "https://api.upbit.com"
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	return &UpbitClient{
		client:    client,
		accessKey: accessKey,
		secretKey: secretKey,
	}
}

func (u *UpbitClient) Name() string { return "upbit" }

// upbitCandle is the JSON shape of the candle endpoints.
type upbitCandle struct {
	Market    string  `json:"market"`
	DateTime  string  `json:"candle_date_time_utc"`
	Opening   float64 `json:"opening_price"`
	High      float64 `json:"high_price"`
	Low       float64 `json:"low_price"`
	Trade     float64 `json:"trade_price"`
	Volume    float64 `json:"candle_acc_trade_volume"`
	Timestamp int64   `json:"timestamp"`
}

// candlePath maps an analysis interval to its candle endpoint.
func candlePath(interval string) (string, error) {
	switch {
	case interval == "day":
		return "/v1/candles/days", nil
	case interval == "week":
		return "/v1/candles/weeks", nil
	case interval == "month":
		return "/v1/candles/months", nil
	case strings.HasPrefix(interval, "minute"):
		unit := strings.TrimPrefix(interval, "minute")
		if _, err := strconv.Atoi(unit); err != nil {
			return "", fmt.Errorf("bad minute interval %q", interval)
		}
		return "/v1/candles/minutes/" + unit, nil
	default:
		return "", fmt.Errorf("unsupported interval %q", interval)
	}
}

// FetchCandles returns count bars for the market in chronological order.
func (u *UpbitClient) FetchCandles(ctx context.Context, market, interval string, count int) ([]model.OHLCV, error) {
	path, err := candlePath(interval)
	if err != nil {
		return nil, err
	}
	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"market": market,
			"count":  strconv.Itoa(count),
		}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch candles: status %d: %s", resp.StatusCode(), resp.String())
	}
	var raw []upbitCandle
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, c := range raw {
		t, err := time.Parse("2006-01-02T15:04:05", c.DateTime)
		if err != nil {
			t = time.UnixMilli(c.Timestamp)
		}
		bars[i] = model.OHLCV{
			Time:   t,
			Open:   c.Opening,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Trade,
			Volume: c.Volume,
		}
	}
	// API returns newest first; analysis wants chronological order.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// FetchCurrentPrice returns the latest trade price for the market.
func (u *UpbitClient) FetchCurrentPrice(ctx context.Context, market string) (float64, error) {
	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParam("markets", market).
		Get("/v1/ticker")
	if err != nil {
		return 0, fmt.Errorf("fetch ticker: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("fetch ticker: status %d: %s", resp.StatusCode(), resp.String())
	}
	var ticks []struct {
		TradePrice float64 `json:"trade_price"`
	}
	if err := json.Unmarshal(resp.Body(), &ticks); err != nil {
		return 0, fmt.Errorf("decode ticker: %w", err)
	}
	if len(ticks) == 0 {
		return 0, fmt.Errorf("fetch ticker: no data for %s", market)
	}
	return ticks[0].TradePrice, nil
}

// PlaceLimitOrder submits a limit order. BUY maps to side "bid", SELL to
// "ask"; any other action is rejected.
func (u *UpbitClient) PlaceLimitOrder(ctx context.Context, market string, side model.Action, price, volume float64) (string, error) {
	var upbitSide string
	switch side {
	case model.ActionBuy:
		upbitSide = "bid"
	case model.ActionSell:
		upbitSide = "ask"
	default:
		return "", fmt.Errorf("unsupported order side %q", side)
	}

	params := map[string]string{
		"market":   market,
		"side":     upbitSide,
		"volume":   strconv.FormatFloat(volume, 'f', -1, 64),
		"price":    strconv.FormatFloat(price, 'f', -1, 64),
		"ord_type": "limit",
	}
	token, err := u.signedToken(params)
	if err != nil {
		return "", fmt.Errorf("sign order: %w", err)
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/v1/orders")
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	if resp.StatusCode() != 201 && resp.StatusCode() != 200 {
		return "", fmt.Errorf("place order: status %d: %s", resp.StatusCode(), resp.String())
	}
	var out struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode order: %w", err)
	}
	return out.UUID, nil
}

// Balances returns the account's currency positions.
func (u *UpbitClient) Balances(ctx context.Context) ([]Balance, error) {
	token, err := u.signedToken(nil)
	if err != nil {
		return nil, fmt.Errorf("sign accounts: %w", err)
	}
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Get("/v1/accounts")
	if err != nil {
		return nil, fmt.Errorf("fetch balances: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch balances: status %d: %s", resp.StatusCode(), resp.String())
	}
	var raw []struct {
		Currency    string `json:"currency"`
		Balance     string `json:"balance"`
		Locked      string `json:"locked"`
		AvgBuyPrice string `json:"avg_buy_price"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	balances := make([]Balance, len(raw))
	for i, b := range raw {
		balances[i] = Balance{
			Currency:    b.Currency,
			Balance:     parseFloat(b.Balance),
			Locked:      parseFloat(b.Locked),
			AvgBuyPrice: parseFloat(b.AvgBuyPrice),
		}
	}
	return balances, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// signedToken builds the Upbit bearer JWT: HS256 over the access key, a
// uuid nonce, and a SHA-512 hash of the url-encoded request params when
// any are present.
func (u *UpbitClient) signedToken(params map[string]string) (string, error) {
	claims := jwt.MapClaims{
		"access_key": u.accessKey,
		"nonce":      uuid.NewString(),
	}
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		sum := sha512.Sum512([]byte(values.Encode()))
		claims["query_hash"] = hex.EncodeToString(sum[:])
		claims["query_hash_alg"] = "SHA512"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(u.secretKey))
}
