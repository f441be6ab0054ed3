package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/freight-audit/backend/internal/table"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"₡1,234.50", "1234.5"},
		{"$ 1200", "1200"},
		{"(1,234.50)", "-1234.5"},
		{"123.45-", "-123.45"},
		{"12,5", "12.5"},
		{"1.234.567", "1234567"},
		{"1,234,567.89", "1234567.89"},
		{"-45.10", "-45.1"},
		{"", "0"},
		{"   ", "0"},
		{"NaN", "0"},
		{"None", "0"},
		{"garbage", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Money(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"Money(%q) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestMoneyValue(t *testing.T) {
	assert.True(t, MoneyValue(table.Num(10.5)).Equal(decimal.RequireFromString("10.5")))
	assert.True(t, MoneyValue(table.Str("1.234,56")).Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, MoneyValue(table.None()).IsZero())
	assert.True(t, MoneyValue(table.Boolean(true)).IsZero())
}

func TestHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Número Guía", "numero guia"},
		{"  CONTENEDOR  ", "contenedor"},
		{"Monto   Tarifa", "monto tarifa"},
		{"Acción", "accion"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Header(tt.in))
	}
}

func TestWaybillAndContainer(t *testing.T) {
	assert.Equal(t, "GU123456", Waybill("GU 12-34 56"))
	assert.Equal(t, "TCLU1234567", Container("tclu-123 4567"))
	assert.Equal(t, "", Waybill("   "))
}

func TestText(t *testing.T) {
	assert.Equal(t, "San José Limón", Text("  San José   Limón "))
	assert.Equal(t, "CERRADA", UpperClean(" cerrada "))
}

func TestDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15-03-2024 08:00", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DateTime(tt.in), "DateTime(%q)", tt.in)
	}
}

func TestDateTimeValue_ExcelSerial(t *testing.T) {
	// serial 45000 is 2023-03-15 in the 1900 date system
	got := DateTimeValue(table.Num(45000))
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), got)

	assert.True(t, DateTimeValue(table.None()).IsZero())
	assert.Equal(t,
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DateTimeValue(table.Str("2024-03-15")))
}
