package polymarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyterm/internal/domain"
)

// Clave de test de hardhat, sin valor real.
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewAuthClientDerivesAddress(t *testing.T) {
	ac, err := NewAuthClient("", "", "", testKey, "")
	require.NoError(t, err)

	// Dirección pública de la clave de hardhat.
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", ac.Address())
	assert.Equal(t, ac.Address(), ac.Funder(), "sin proxy la funder es la EOA")
}

func TestNewAuthClientWithProxyWallet(t *testing.T) {
	proxy := "0x1111111111111111111111111111111111111111"
	ac, err := NewAuthClient("", "", "", testKey, proxy)
	require.NoError(t, err)

	assert.NotEqual(t, ac.Address(), ac.Funder())
	assert.Equal(t, proxy, ac.Funder())
}

func TestNewAuthClientRejectsBadKey(t *testing.T) {
	_, err := NewAuthClient("", "", "", "not-a-key", "")
	require.Error(t, err)
	// El error nunca incluye el material de la clave.
	assert.NotContains(t, err.Error(), "not-a-key")
}

func TestDetectPricePrecision(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{0.60, 100},
		{0.5, 100},
		{0.673, 1000},
		{0.001, 1000},
		{0.1234, 10000},
		{0.99, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, detectPricePrecision(tc.price), "price %v", tc.price)
	}
}

func TestBuildSignedOrderAmounts(t *testing.T) {
	ac, err := NewAuthClient("", "", "", testKey, "")
	require.NoError(t, err)

	// BUY 10 shares a 0.60: maker paga USDC, taker recibe shares.
	buy, err := ac.buildSignedOrder("123456", domain.Buy, 0.60, 10, false)
	require.NoError(t, err)
	assert.Equal(t, "6000000", buy.MakerAmount.String(), "6 USDC en micro-units")
	assert.Equal(t, "10000000", buy.TakerAmount.String(), "10 shares en units de 1e6")

	// SELL invierte los amounts.
	sell, err := ac.buildSignedOrder("123456", domain.Sell, 0.60, 10, false)
	require.NoError(t, err)
	assert.Equal(t, "10000000", sell.MakerAmount.String())
	assert.Equal(t, "6000000", sell.TakerAmount.String())
}

func TestBuildSignedOrderFractionalShares(t *testing.T) {
	ac, err := NewAuthClient("", "", "", testKey, "")
	require.NoError(t, err)

	// 2.5 shares a 0.45: floor a céntimos de share evita redondeos al alza.
	order, err := ac.buildSignedOrder("123456", domain.Buy, 0.45, 2.5, false)
	require.NoError(t, err)
	assert.Equal(t, "1125000", order.MakerAmount.String(), "2.5 × 0.45 = 1.125 USDC")
	assert.Equal(t, "2500000", order.TakerAmount.String())
}

func TestBuildSignedOrderRejectsZeroSize(t *testing.T) {
	ac, err := NewAuthClient("", "", "", testKey, "")
	require.NoError(t, err)

	_, err = ac.buildSignedOrder("123456", domain.Buy, 0.50, 0.001, false)
	require.Error(t, err)
}
