package aggregate

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func chart(codes ...string) []model.StandardAccount {
	out := make([]model.StandardAccount, len(codes))
	for i, c := range codes {
		out[i] = model.StandardAccount{Code: c, Name: "conta " + c, Level: code.MustParse(c).Level()}
	}
	return out
}

func rawAcct(c, cur string) model.RawAccount {
	return model.RawAccount{Code: c, Name: c, Balances: model.Balances{
		PreviousBalance: d("1"), Debit: d("2"), Credit: d("3"), CurrentBalance: d(cur),
	}}
}

func current(res Result) map[string]decimal.Decimal {
	m := map[string]decimal.Decimal{}
	for _, a := range res.Accounts {
		m[a.Code] = a.CurrentBalance
	}
	return m
}

var depth3 = chart("1", "1.1", "1.1.1", "1.1.2", "1.2", "1.2.1", "2", "2.1", "2.1.1")

func TestAggregate_RollsUpFromLeaves(t *testing.T) {
	raw := []model.RawAccount{
		rawAcct("10", "100"), rawAcct("11", "50"), rawAcct("12", "25"),
		rawAcct("20", "7.5"), rawAcct("30", "-40"),
	}
	links := map[string]string{"10": "1.1.1", "11": "1.1.1", "12": "1.1.2", "20": "1.2.1", "30": "2.1.1"}

	res, err := Aggregate(raw, links, depth3, Options{})
	require.NoError(t, err)
	cur := current(res)

	assert.True(t, cur["1.1.1"].Equal(d("150")))
	assert.True(t, cur["1.1"].Equal(d("175")))
	assert.True(t, cur["1"].Equal(d("182.5")))
	assert.True(t, cur["2"].Equal(d("-40")))
	assert.Empty(t, res.Unmapped)
	assert.Empty(t, res.Ambiguities)

	// Every money field is summed, not only the current balance.
	for _, a := range res.Accounts {
		if a.Code == "1" {
			assert.True(t, a.PreviousBalance.Equal(d("4")))
			assert.True(t, a.Debit.Equal(d("8")))
			assert.True(t, a.Credit.Equal(d("12")))
		}
	}

	// Output keeps chart order.
	require.Len(t, res.Accounts, len(depth3))
	assert.Equal(t, "1.1.1", res.Accounts[2].Code)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	var raw []model.RawAccount
	links := map[string]string{}
	leaves := []string{"1.1.1", "1.1.2", "1.2.1", "2.1.1"}
	want := decimal.Zero
	for i := 0; i < 40; i++ {
		c := fmt.Sprintf("9.%d", i+1)
		amt := decimal.NewFromInt(int64(i*37%101 - 50))
		raw = append(raw, model.RawAccount{Code: c, Balances: model.Balances{CurrentBalance: amt}})
		links[c] = leaves[i%len(leaves)]
		if leaves[i%len(leaves)][0] == '1' {
			want = want.Add(amt)
		}
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(raw), func(a, b int) { raw[a], raw[b] = raw[b], raw[a] })
		res, err := Aggregate(raw, links, depth3, Options{})
		require.NoError(t, err)
		assert.True(t, current(res)["1"].Equal(want), "permutation %d", i)
	}
}

func TestAggregate_DirectMappingOnIntermediate(t *testing.T) {
	raw := []model.RawAccount{rawAcct("901", "10"), rawAcct("902", "5")}
	links := map[string]string{"901": "1.1", "902": "1.2.1"}

	res, err := Aggregate(raw, links, depth3, Options{})
	require.NoError(t, err)
	cur := current(res)
	assert.True(t, cur["1.1"].Equal(d("10")))
	assert.True(t, cur["1.1.1"].IsZero())
	assert.True(t, cur["1"].Equal(d("15")))
}

func TestAggregate_AmbiguousPrefersDirect(t *testing.T) {
	raw := []model.RawAccount{rawAcct("901", "10"), rawAcct("902", "99")}
	links := map[string]string{"901": "1.1", "902": "1.1.2"}

	res, err := Aggregate(raw, links, depth3, Options{})
	require.NoError(t, err)
	assert.True(t, current(res)["1.1"].Equal(d("10")))
	require.Len(t, res.Ambiguities, 1)
	assert.Equal(t, "1.1", res.Ambiguities[0].Code)
	assert.Equal(t, []string{"901"}, res.Ambiguities[0].Direct)
	assert.Equal(t, []string{"1.1.2"}, res.Ambiguities[0].Children)
}

func TestAggregate_AmbiguousStrict(t *testing.T) {
	raw := []model.RawAccount{rawAcct("901", "10"), rawAcct("902", "99")}
	links := map[string]string{"901": "1.1", "902": "1.1.2"}

	_, err := Aggregate(raw, links, depth3, Options{Strict: true})
	var amb AmbiguousMappingError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, "1.1", amb.Code)
}

func TestAggregate_UnmappedDropped(t *testing.T) {
	raw := []model.RawAccount{rawAcct("901", "10"), rawAcct("902", "5"), rawAcct("903", "1")}
	links := map[string]string{"901": "1.1.1", "903": "7.7.7"}

	res, err := Aggregate(raw, links, depth3, Options{})
	require.NoError(t, err)
	assert.True(t, current(res)["1"].Equal(d("10")))
	assert.Equal(t, []string{"902", "903"}, res.Unmapped)
}

func TestAggregate_EmptyStaysZero(t *testing.T) {
	res, err := Aggregate(nil, nil, depth3, Options{})
	require.NoError(t, err)
	for _, a := range res.Accounts {
		assert.True(t, a.Balances.IsZero(), a.Code)
	}
}

func TestAggregate_MalformedCodes(t *testing.T) {
	_, err := Aggregate([]model.RawAccount{rawAcct("1.x", "1")}, nil, depth3, Options{})
	var mce code.MalformedCodeError
	assert.True(t, errors.As(err, &mce))

	_, err = Aggregate(nil, nil, []model.StandardAccount{{Code: "bad"}}, Options{})
	assert.True(t, errors.As(err, &mce))
}
