package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0,00",
		"7.5":        "7,50",
		"999.99":     "999,99",
		"1000":       "1.000,00",
		"1234567.5":  "1.234.567,50",
		"-25000.1":   "-25.000,10",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestUnitLabel(t *testing.T) {
	assert.Equal(t, "kg", unitLabel("кг"))
	assert.Equal(t, "kg", unitLabel(""))
	assert.Equal(t, "caja", unitLabel("caja"))
}

func TestFormatQty(t *testing.T) {
	g := NewWaybillGenerator()
	assert.Equal(t, "12.345,500", g.formatQty(12345.5))
}

func TestGenerateWaybillPDF(t *testing.T) {
	g := NewWaybillGenerator()
	doc := &entity.Document{
		ID: 1, Type: entity.DocTypeTransfer, Number: "T-17",
		Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Status: entity.StatusPosted,
		Notes: "Bodega norte",
	}
	lines := []document.WaybillLine{
		{ProductName: "Papa criolla", Unit: "кг", QtyKg: 120.5, Price: decimal.RequireFromString("2.10"), LineSum: decimal.RequireFromString("253.05")},
		{ProductName: "Cebolla", Unit: "кг", QtyKg: 30, Price: decimal.RequireFromString("1.00"), LineSum: decimal.RequireFromString("30.00")},
	}

	out, err := g.GenerateWaybillPDF(context.Background(), "Mayorista S.A.S.", doc, lines)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))

	_, err = g.GenerateWaybillPDF(context.Background(), "X", nil, nil)
	assert.Error(t, err)
}
