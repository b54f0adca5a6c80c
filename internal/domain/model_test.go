package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func boolPtr(v bool) *bool { return &v }

func TestInferType(t *testing.T) {
	tests := []struct {
		amount int64
		want   TxType
	}{
		{500, TxTopup},
		{0, TxTopup},
		{-300, TxCashout},
	}
	for _, tt := range tests {
		got := InferType(decimal.NewFromInt(tt.amount))
		if got != tt.want {
			t.Errorf("InferType(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestTxTypeKnown(t *testing.T) {
	for _, typ := range []TxType{TxOpening, TxTopup, TxCashout, TxOrder} {
		if !typ.Known() {
			t.Errorf("%q.Known() = false, want true", typ)
		}
	}
	for _, typ := range []TxType{"", "refund", "TOPUP"} {
		if typ.Known() {
			t.Errorf("%q.Known() = true, want false", typ)
		}
	}
}

func TestCountsTowardBalance(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{
			name: "topup counts",
			tx:   Transaction{Name: "An", Type: TxTopup},
			want: true,
		},
		{
			name: "opening counts",
			tx:   Transaction{Name: "An", Type: TxOpening},
			want: true,
		},
		{
			name: "cashout counts",
			tx:   Transaction{Name: "An", Type: TxCashout},
			want: true,
		},
		{
			name: "vip order by flag",
			tx:   Transaction{Name: "An", Type: TxOrder, IsVipPayment: boolPtr(true)},
			want: true,
		},
		{
			name: "vip order by payment method",
			tx:   Transaction{Name: "An", Type: TxOrder, PaymentMethod: PaymentVip},
			want: true,
		},
		{
			name: "cash order excluded",
			tx:   Transaction{Name: "An", Type: TxOrder, IsVipPayment: boolPtr(false), PaymentMethod: "cash"},
			want: false,
		},
		{
			name: "order with no payment context excluded",
			tx:   Transaction{Name: "An", Type: TxOrder},
			want: false,
		},
		{
			name: "orphan excluded",
			tx:   Transaction{Name: "An", Type: TxTopup, Orphan: true},
			want: false,
		},
		{
			name: "blank name excluded",
			tx:   Transaction{Name: "   ", Type: TxTopup},
			want: false,
		},
		{
			name: "unknown type excluded",
			tx:   Transaction{Name: "An", Type: "refund"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.CountsTowardBalance(); got != tt.want {
				t.Errorf("CountsTowardBalance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalancesGetAndClone(t *testing.T) {
	b := Balances{"An": decimal.NewFromInt(500)}

	if got := b.Get("An"); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Get(An) = %s, want 500", got)
	}
	if got := b.Get("Bình"); !got.IsZero() {
		t.Errorf("Get(unknown) = %s, want 0", got)
	}

	clone := b.Clone()
	clone["An"] = decimal.NewFromInt(1)
	if !b["An"].Equal(decimal.NewFromInt(500)) {
		t.Error("Clone() shares storage with the original")
	}

	var nilBalances Balances
	if got := nilBalances.Clone(); got == nil || len(got) != 0 {
		t.Errorf("nil.Clone() = %v, want empty map", got)
	}
}

func TestMemberNames(t *testing.T) {
	txs := []Transaction{
		{Name: "An"},
		{Name: " An "},
		{Name: "Bình"},
		{Name: "  "},
	}
	names := MemberNames(txs)
	if len(names) != 2 {
		t.Fatalf("MemberNames returned %d names, want 2", len(names))
	}
	for _, want := range []string{"An", "Bình"} {
		if _, ok := names[want]; !ok {
			t.Errorf("MemberNames missing %q", want)
		}
	}
}
