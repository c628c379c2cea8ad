package polymarket

// trading.go — Real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor using AuthClient for L1/L2 auth.
// LIMIT orders post as GTC, MARKET orders as FOK. POST /order is never
// retried: a transport failure after the request went out leaves the
// outcome unknown and surfaces as AMBIGUOUS_OUTCOME for the caller to
// reconcile before any retry.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"

	"github.com/alejandrodnm/polyterm/internal/domain"
	"github.com/alejandrodnm/polyterm/internal/ports"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg     string `json:"errorMsg"`
	OrderID      string `json:"orderID"`
	TakingAmount string `json:"takingAmount"`
	MakingAmount string `json:"makingAmount"`
	Status       string `json:"status"`
	Success      bool   `json:"success"`
}

const usdcEAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"

var balanceOfABI abi.ABI

func init() {
	var err error
	balanceOfABI, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf abi: " + err.Error())
	}
}

// TradingClient implements ports.OrderExecutor.
type TradingClient struct {
	auth      *AuthClient
	rpcClient *ethclient.Client
}

// NewTradingClient creates a TradingClient. rpcURL is used for on-chain
// USDC balance checks.
func NewTradingClient(auth *AuthClient, rpcURL string) (*TradingClient, error) {
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("trading: dial rpc: %w", err)
	}
	return &TradingClient{auth: auth, rpcClient: rpc}, nil
}

// Submit signs and posts the order to the CLOB.
func (tc *TradingClient) Submit(ctx context.Context, req ports.SubmitRequest) (domain.OrderReceipt, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("submit: creds: %w", err)
	}

	negRisk, err := tc.isNegRisk(ctx, req.TokenID)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("submit: %w", err)
	}

	signed, err := tc.auth.buildSignedOrder(req.TokenID, req.Side, req.Price, req.Size, negRisk)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("submit: sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       req.TokenID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          string(req.Side),
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: req.TimeInForce,
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp, false); err != nil {
		// La request pudo haber llegado al exchange: un fallo de transporte,
		// un 5xx, o una respuesta indescifrable tras el POST dejan el
		// resultado desconocido. Solo un 4xx (VALIDATION) es rechazo seguro.
		if domain.IsKind(err, domain.KindValidation) {
			return domain.OrderReceipt{}, fmt.Errorf("submit: rejected: %w", err)
		}
		return domain.OrderReceipt{}, domain.E(domain.KindAmbiguousOutcome, "trading.Submit", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.OrderReceipt{}, domain.Ef(domain.KindRetrievalFailed, "trading.Submit",
			"clob rejected order: %s", resp.ErrorMsg)
	}

	return domain.OrderReceipt{
		LocalID:     uuid.NewString(),
		CLOBOrderID: resp.OrderID,
		Status:      resp.Status,
		TakenAmount: parseUSDC(resp.TakingAmount),
		MadeAmount:  parseUSDC(resp.MakingAmount),
		PlacedAt:    time.Now().UTC(),
	}, nil
}

// Cancel cancels a single order by its CLOB order ID.
func (tc *TradingClient) Cancel(ctx context.Context, orderID string) error {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return fmt.Errorf("cancel: creds: %w", err)
	}

	path := "/order/" + orderID
	if err := tc.auth.doL2(ctx, http.MethodDelete, path, nil, nil, true); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// OpenOrders returns all currently open orders from the CLOB.
func (tc *TradingClient) OpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return nil, fmt.Errorf("open orders: creds: %w", err)
	}

	var resp clobOrdersResponse
	if err := tc.auth.doL2(ctx, http.MethodGet, "/orders", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("open orders: %w", err)
	}

	orders := make([]domain.OpenOrder, 0, len(resp.Data))
	for _, o := range resp.Data {
		orders = append(orders, mapOpenOrder(o))
	}
	return orders, nil
}

// Balance returns the on-chain USDC.e balance of the funder wallet.
func (tc *TradingClient) Balance(ctx context.Context) (float64, error) {
	callData, err := balanceOfABI.Pack("balanceOf", tc.auth.funder)
	if err != nil {
		return 0, fmt.Errorf("balance: pack: %w", err)
	}

	token := common.HexToAddress(usdcEAddress)
	result, err := tc.rpcClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return 0, domain.E(domain.KindRetrievalFailed, "trading.Balance",
			fmt.Errorf("rpc call: %w", err))
	}

	vals, err := balanceOfABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, domain.E(domain.KindParseFailed, "trading.Balance",
			fmt.Errorf("unpack: %w", err))
	}

	raw := vals[0].(*big.Int)
	bal, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(1e6)).Float64()
	return bal, nil
}

// isNegRisk queries the CLOB to determine if a token uses the NegRisk adapter.
func (tc *TradingClient) isNegRisk(ctx context.Context, tokenID string) (bool, error) {
	url := fmt.Sprintf("%s/neg-risk?token_id=%s", tc.auth.clobBase, tokenID)

	var resp clobNegRiskResponse
	if err := tc.auth.get(ctx, tc.auth.clobLimiter, url, &resp); err != nil {
		return false, fmt.Errorf("neg-risk check: %w", err)
	}
	return resp.NegRisk, nil
}

// mapOpenOrder converts a CLOB API order to our domain type.
func mapOpenOrder(o clobOpenOrder) domain.OpenOrder {
	size := parseFloat(o.OriginalSize)
	matched := parseFloat(o.SizeMatched)
	side := domain.Buy
	if strings.EqualFold(o.Side, "SELL") {
		side = domain.Sell
	}

	return domain.OpenOrder{
		OrderID:       o.ID,
		MarketID:      o.Market,
		TokenID:       o.AssetID,
		Outcome:       o.Outcome,
		Side:          side,
		Price:         parseFloat(o.Price),
		OriginalSize:  size,
		RemainingSize: size - matched,
		CreatedAt:     parseUnixOrISO(o.CreatedAt),
	}
}

// parseUSDC converts a micro-USDC string (e.g., "1000000") to USDC float.
func parseUSDC(s string) float64 {
	if s == "" {
		return 0
	}
	n := new(big.Int)
	n.SetString(s, 10)
	f, _ := new(big.Float).SetInt(n).Float64()
	return f / 1_000_000
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
