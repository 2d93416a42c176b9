package ledger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	u1 MemberID = "U1"
	u2 MemberID = "U2"
	u3 MemberID = "U3"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !d(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

// threeWay is U1 paying 60 split equally between U1, U2 and U3.
func threeWay() Expense {
	return Expense{
		ID:     "e1",
		Payer:  u1,
		Amount: d("60"),
		Splits: []Split{
			{Member: u1, Amount: d("20")},
			{Member: u2, Amount: d("20")},
			{Member: u3, Amount: d("20")},
		},
	}
}

func TestAccumulate_ThreeWaySplit(t *testing.T) {
	res, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{threeWay()}, nil)
	require.NoError(t, err)

	assertDecimal(t, "40", res.Totals[u1])
	assertDecimal(t, "-20", res.Totals[u2])
	assertDecimal(t, "-20", res.Totals[u3])

	assertDecimal(t, "20", res.Ledger.Owed(u2, u1))
	assertDecimal(t, "20", res.Ledger.Owed(u3, u1))
	for _, pair := range [][2]MemberID{{u1, u2}, {u1, u3}, {u2, u3}, {u3, u2}} {
		assertDecimal(t, "0", res.Ledger.Owed(pair[0], pair[1]), "ledger[%s][%s]", pair[0], pair[1])
	}
	assert.Empty(t, res.Warnings)
}

func TestAccumulate_SettlementReducesDebt(t *testing.T) {
	settlements := []Settlement{{ID: "s1", Payer: u2, Receiver: u1, Amount: d("10")}}

	res, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{threeWay()}, settlements)
	require.NoError(t, err)

	assertDecimal(t, "30", res.Totals[u1])
	assertDecimal(t, "-10", res.Totals[u2])
	assertDecimal(t, "-20", res.Totals[u3])
	assertDecimal(t, "10", res.Ledger.Owed(u2, u1))
	assertDecimal(t, "20", res.Ledger.Owed(u3, u1))
}

func TestAccumulate_OverpaymentFlipsDirection(t *testing.T) {
	expenses := []Expense{{
		ID:     "e1",
		Payer:  u1,
		Amount: d("20"),
		Splits: []Split{{Member: u1, Amount: d("10")}, {Member: u2, Amount: d("10")}},
	}}
	settlements := []Settlement{{ID: "s1", Payer: u2, Receiver: u1, Amount: d("15")}}

	res, err := Accumulate([]MemberID{u1, u2}, expenses, settlements)
	require.NoError(t, err)

	assertDecimal(t, "-5", res.Ledger.Owed(u2, u1), "raw cell keeps the sign")
	assertDecimal(t, "5", res.Ledger.Net(u1, u2))
	assertDecimal(t, "-5", res.Totals[u1])
	assertDecimal(t, "5", res.Totals[u2])

	canonical := res.Ledger.Canonical()
	assertDecimal(t, "5", canonical.Owed(u1, u2))
	assertDecimal(t, "0", canonical.Owed(u2, u1))
}

func TestAccumulate_UnknownMemberRejected(t *testing.T) {
	tests := []struct {
		name        string
		expenses    []Expense
		settlements []Settlement
		member      MemberID
	}{
		{
			name:     "unknown payer",
			expenses: []Expense{{ID: "e1", Payer: "ghost", Amount: d("10"), Splits: []Split{{Member: u1, Amount: d("10")}}}},
			member:   "ghost",
		},
		{
			name:     "unknown split member",
			expenses: []Expense{{ID: "e1", Payer: u1, Amount: d("10"), Splits: []Split{{Member: "ghost", Amount: d("10")}}}},
			member:   "ghost",
		},
		{
			name:     "unknown settled split member",
			expenses: []Expense{{ID: "e1", Payer: u1, Amount: d("10"), Splits: []Split{{Member: "ghost", Amount: d("10"), Settled: true}}}},
			member:   "ghost",
		},
		{
			name:        "unknown settlement receiver",
			settlements: []Settlement{{ID: "s1", Payer: u1, Receiver: "ghost", Amount: d("5")}},
			member:      "ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Accumulate([]MemberID{u1, u2}, tt.expenses, tt.settlements)
			require.Error(t, err)
			assert.Nil(t, res, "no partial result")
			assert.ErrorIs(t, err, ErrUnknownMember)

			var integrityErr *IntegrityError
			require.ErrorAs(t, err, &integrityErr)
			assert.Equal(t, tt.member, integrityErr.Member)
		})
	}
}

func TestAccumulate_MalformedInput(t *testing.T) {
	t.Run("negative split rejected", func(t *testing.T) {
		_, err := Accumulate([]MemberID{u1, u2}, []Expense{{
			ID: "e1", Payer: u1, Amount: d("0"),
			Splits: []Split{{Member: u2, Amount: d("-5")}},
		}}, nil)
		assert.ErrorIs(t, err, ErrMalformedSplit)
	})

	t.Run("non-positive settlement rejected", func(t *testing.T) {
		_, err := Accumulate([]MemberID{u1, u2}, nil, []Settlement{{ID: "s1", Payer: u1, Receiver: u2, Amount: d("0")}})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("missing payer rejected", func(t *testing.T) {
		_, err := Accumulate([]MemberID{u1, u2}, []Expense{{ID: "e1", Amount: d("1")}}, nil)
		assert.ErrorIs(t, err, ErrMissingPayer)
	})

	t.Run("missing receiver rejected", func(t *testing.T) {
		_, err := Accumulate([]MemberID{u1, u2}, nil, []Settlement{{ID: "s1", Payer: u1, Amount: d("5")}})
		assert.ErrorIs(t, err, ErrMissingReceiver)
		assert.NotErrorIs(t, err, ErrUnknownMember)
	})

	t.Run("split sum mismatch is a warning", func(t *testing.T) {
		res, err := Accumulate([]MemberID{u1, u2}, []Expense{{
			ID: "e1", Payer: u1, Amount: d("30"),
			Splits: []Split{{Member: u1, Amount: d("10")}, {Member: u2, Amount: d("10")}},
		}}, nil)
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarningSplitSum, res.Warnings[0].Kind)
		assert.Equal(t, "e1", res.Warnings[0].RecordID)
		assertDecimal(t, "10", res.Ledger.Owed(u2, u1), "literal split amounts are used")
	})

	t.Run("sum within tolerance is not a warning", func(t *testing.T) {
		res, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{{
			ID: "e1", Payer: u1, Amount: d("10"),
			Splits: []Split{{Member: u1, Amount: d("3.33")}, {Member: u2, Amount: d("3.33")}, {Member: u3, Amount: d("3.33")}},
		}}, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
	})

	t.Run("self settlement ignored", func(t *testing.T) {
		res, err := Accumulate([]MemberID{u1, u2}, nil, []Settlement{{ID: "s1", Payer: u1, Receiver: u1, Amount: d("50")}})
		require.NoError(t, err)
		assertDecimal(t, "0", res.Totals[u1])
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, WarningSelfSettlement, res.Warnings[0].Kind)
	})
}

func TestAccumulate_EmptyInput(t *testing.T) {
	res, err := Accumulate([]MemberID{u1, u2, u3}, nil, nil)
	require.NoError(t, err)

	assert.Len(t, res.Totals, 3)
	for m, v := range res.Totals {
		assertDecimal(t, "0", v, "total of %s", m)
	}
	for _, row := range res.Ledger {
		for _, v := range row {
			assertDecimal(t, "0", v)
		}
	}
}

func TestAccumulate_NeutralSplits(t *testing.T) {
	base, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{threeWay()}, nil)
	require.NoError(t, err)

	withNoise := threeWay()
	withNoise.Splits = append(withNoise.Splits,
		Split{Member: u1, Amount: d("1000")},
		Split{Member: u2, Amount: d("77"), Settled: true},
		Split{Member: u3, Amount: d("12.5"), Settled: true},
	)
	withNoise.Amount = d("1149.5")

	res, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{withNoise}, nil)
	require.NoError(t, err)

	assertSameResult(t, base, res)
}

func TestAccumulate_OrderIndependence(t *testing.T) {
	members := []MemberID{u1, u2, u3, "U4"}
	r := rand.New(rand.NewSource(7))
	expenses, settlements := randomRecords(r, members, 40, 25)

	want, err := Accumulate(members, expenses, settlements)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		exps := append([]Expense(nil), expenses...)
		setts := append([]Settlement(nil), settlements...)
		r.Shuffle(len(exps), func(a, b int) { exps[a], exps[b] = exps[b], exps[a] })
		r.Shuffle(len(setts), func(a, b int) { setts[a], setts[b] = setts[b], setts[a] })

		got, err := Accumulate(members, exps, setts)
		require.NoError(t, err)
		assertSameResult(t, want, got)
	}
}

func TestAccumulate_ZeroSum(t *testing.T) {
	members := []MemberID{u1, u2, u3, "U4", "U5"}
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		expenses, settlements := randomRecords(r, members, r.Intn(30), r.Intn(30))
		res, err := Accumulate(members, expenses, settlements)
		require.NoError(t, err)
		assert.True(t, res.Totals.Sum().IsZero(), "totals sum to %s", res.Totals.Sum())
	}
}

func TestAccumulate_DoesNotShareState(t *testing.T) {
	first, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{threeWay()}, nil)
	require.NoError(t, err)
	second, err := Accumulate([]MemberID{u1, u2, u3}, []Expense{threeWay()}, nil)
	require.NoError(t, err)

	first.Totals[u1] = d("999")
	first.Ledger[u2][u1] = d("999")

	assertDecimal(t, "40", second.Totals[u1])
	assertDecimal(t, "20", second.Ledger.Owed(u2, u1))
}

func randomRecords(r *rand.Rand, members []MemberID, nExpenses, nSettlements int) ([]Expense, []Settlement) {
	pick := func() MemberID { return members[r.Intn(len(members))] }
	cents := func() decimal.Decimal { return decimal.New(int64(r.Intn(20000)+1), -2) }

	expenses := make([]Expense, 0, nExpenses)
	for i := 0; i < nExpenses; i++ {
		e := Expense{Payer: pick()}
		for _, m := range members {
			if r.Intn(2) == 0 {
				continue
			}
			split := Split{Member: m, Amount: cents(), Settled: r.Intn(5) == 0}
			e.Splits = append(e.Splits, split)
			e.Amount = e.Amount.Add(split.Amount)
		}
		expenses = append(expenses, e)
	}

	settlements := make([]Settlement, 0, nSettlements)
	for i := 0; i < nSettlements; i++ {
		settlements = append(settlements, Settlement{Payer: pick(), Receiver: pick(), Amount: cents()})
	}
	return expenses, settlements
}

func assertSameResult(t *testing.T, want, got *Result) {
	t.Helper()
	require.Len(t, got.Totals, len(want.Totals))
	for m, v := range want.Totals {
		assert.True(t, v.Equal(got.Totals.Get(m)), "total of %s: want %s, got %s", m, v, got.Totals.Get(m))
	}
	for a, row := range want.Ledger {
		for b, v := range row {
			assert.True(t, v.Equal(got.Ledger.Owed(a, b)), "ledger[%s][%s]: want %s, got %s", a, b, v, got.Ledger.Owed(a, b))
		}
	}
}
