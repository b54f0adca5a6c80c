package snapshot

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]int64
	}{
		{
			name: "canonical lines",
			text: "An, 500đ\nBình, -200đ",
			want: map[string]int64{"An": 500, "Bình": -200},
		},
		{
			name: "đ suffix optional",
			text: "An, 500",
			want: map[string]int64{"An": 500},
		},
		{
			name: "legacy equals form",
			text: "An=500đ\nBình= 300 đ",
			want: map[string]int64{"An": 500, "Bình": 300},
		},
		{
			name: "comments and blanks skipped",
			text: "# đội VIP\n\nAn, 500đ\n   \n# cuối danh sách",
			want: map[string]int64{"An": 500},
		},
		{
			name: "malformed lines skipped",
			text: "An, 500đ\nnot a member line\nBình, nămđ",
			want: map[string]int64{"An": 500},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  An ,  500đ  ",
			want: map[string]int64{"An": 500},
		},
		{
			name: "empty text",
			text: "",
			want: map[string]int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse returned %d members, want %d", len(got), len(tt.want))
			}
			for name, want := range tt.want {
				if !got.Get(name).Equal(dec(want)) {
					t.Errorf("balance[%s] = %s, want %d", name, got.Get(name), want)
				}
			}
		})
	}
}

func TestSerialize(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		if got := Serialize(nil); got != "" {
			t.Errorf("Serialize(nil) = %q, want empty", got)
		}
	})

	t.Run("canonical lines in name order", func(t *testing.T) {
		balances := domain.Balances{
			"Cường": dec(100),
			"An":    dec(500),
			"Bình":  dec(-200),
		}
		want := "An, 500đ\nBình, -200đ\nCường, 100đ"
		if got := Serialize(balances); got != want {
			t.Errorf("Serialize =\n%q\nwant\n%q", got, want)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	balances := domain.Balances{"An": dec(500), "Bình": dec(-200)}

	got := Parse(Serialize(balances))
	if len(got) != len(balances) {
		t.Fatalf("round trip returned %d members, want %d", len(got), len(balances))
	}
	for name, want := range balances {
		if !got.Get(name).Equal(want) {
			t.Errorf("round trip balance[%s] = %s, want %s", name, got.Get(name), want)
		}
	}
}
