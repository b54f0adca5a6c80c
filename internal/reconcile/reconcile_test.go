package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/orderhelper/vipledger/internal/domain"
)

func boolPtr(v bool) *bool        { return &v }
func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestValidate(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "1", Name: "An", Amount: dec(1000), Type: domain.TxOpening},
		{ID: "2", Name: "An", Amount: dec(500), Type: domain.TxTopup},
		{ID: "3", Name: "An", Amount: dec(-300), Type: domain.TxOrder, IsVipPayment: boolPtr(true)},
		{ID: "4", Name: "Bình", Amount: dec(700), Type: domain.TxTopup},
	}

	t.Run("matching balance", func(t *testing.T) {
		r := Validate("An", dec(1200), txs)
		if !r.Valid {
			t.Errorf("Valid = false, want true (diff %s)", r.Diff)
		}
		if !r.Diff.IsZero() {
			t.Errorf("Diff = %s, want 0", r.Diff)
		}
		if r.TransactionCount != 3 {
			t.Errorf("TransactionCount = %d, want 3", r.TransactionCount)
		}
	})

	t.Run("discrepancy is signed", func(t *testing.T) {
		r := Validate("An", dec(1000), txs)
		if r.Valid {
			t.Error("Valid = true, want false")
		}
		if !r.Actual.Equal(dec(1200)) {
			t.Errorf("Actual = %s, want 1200", r.Actual)
		}
		if !r.Diff.Equal(dec(200)) {
			t.Errorf("Diff = %s, want +200", r.Diff)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		r := Validate("Cường", dec(0), txs)
		if !r.Valid {
			t.Error("zero expected against empty history should be valid")
		}
		if r.TransactionCount != 0 {
			t.Errorf("TransactionCount = %d, want 0", r.TransactionCount)
		}
	})
}

func TestAudit(t *testing.T) {
	doc := domain.Backup{
		VipList: "An, 200đ\nBình, 700đ",
		VipTransactions: []domain.Transaction{
			{ID: "t1", Name: "An", Amount: dec(500), Type: domain.TxTopup},
			{ID: "t1", Name: "An", Amount: dec(500), Type: domain.TxTopup}, // duplicate id
			{ID: "t2", Name: "Bình", Amount: dec(700), Type: domain.TxTopup},
			{ID: "t3", Name: "Cường", Amount: dec(100), Type: domain.TxTopup},
		},
		OrderHistory: []domain.Order{
			{ID: "o1", Details: []domain.OrderDetail{
				{Name: "An", Due: dec(300), Paid: true, PaymentMethod: "vip"},
				{Name: "An", Due: dec(999), Paid: false},
				{Name: "Dũng", Due: dec(50), Paid: true},
			}},
		},
	}

	report := Audit(doc)

	// Union of snapshot names and topup names, sorted; Dũng has no topup
	// and is not on the list, so it is out of scope.
	if len(report.Rows) != 3 {
		t.Fatalf("Audit returned %d rows, want 3", len(report.Rows))
	}
	wantNames := []string{"An", "Bình", "Cường"}
	for i, want := range wantNames {
		if report.Rows[i].Name != want {
			t.Errorf("row %d = %q, want %q", i, report.Rows[i].Name, want)
		}
	}

	an := report.Rows[0]
	if !an.Topup.Equal(dec(500)) {
		t.Errorf("An topup = %s, want 500 (duplicate id applied once)", an.Topup)
	}
	if !an.Spent.Equal(dec(300)) {
		t.Errorf("An spent = %s, want 300 (unpaid line excluded)", an.Spent)
	}
	if !an.Calculated.Equal(dec(200)) {
		t.Errorf("An calculated = %s, want 200", an.Calculated)
	}
	if !an.Diff.IsZero() {
		t.Errorf("An diff = %s, want 0", an.Diff)
	}

	cuong := report.Rows[2]
	if !cuong.Recorded.IsZero() {
		t.Errorf("Cường recorded = %s, want 0 (not on the list)", cuong.Recorded)
	}
	if !cuong.Diff.Equal(dec(100)) {
		t.Errorf("Cường diff = %s, want +100", cuong.Diff)
	}

	if !report.TotalTopup.Equal(dec(1300)) {
		t.Errorf("TotalTopup = %s, want 1300", report.TotalTopup)
	}
	if !report.TotalSpent.Equal(dec(300)) {
		t.Errorf("TotalSpent = %s, want 300", report.TotalSpent)
	}
}
