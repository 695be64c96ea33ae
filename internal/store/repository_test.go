package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

func TestRepository_Company(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemory())

	_, err := repo.Company(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SaveCompany(ctx, model.Company{ID: "acme", AccountantID: "acc", Software: "contmatic"}))
	require.NoError(t, repo.AdvanceLastSheet(ctx, "acme", period.Period{Month: 3, Year: 2024}))
	require.NoError(t, repo.AdvanceLastSheet(ctx, "acme", period.Period{Month: 1, Year: 2024}))

	c, err := repo.Company(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", c.LastBalanceSheet)

	// Re-saving does not roll the last sheet back.
	require.NoError(t, repo.SaveCompany(ctx, model.Company{ID: "acme", AccountantID: "acc", Software: "dominio"}))
	c, err = repo.Company(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "dominio", c.Software)
	assert.Equal(t, "2024-03", c.LastBalanceSheet)

	assert.ErrorIs(t, repo.AdvanceLastSheet(ctx, "ghost", period.Period{Month: 1, Year: 2024}), ErrNotFound)
	_, err = repo.Company(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.Companies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRepository_Links(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemory())

	link := model.AccountLink{AccountantID: "acc", CompanyID: "acme", ExternalCode: "1.1", Name: "Caixa", Level: 2}
	require.NoError(t, repo.UpsertUniqueAccount(ctx, link))

	changed, err := repo.ResolveLinkIfUnset(ctx, "acc", "acme", "1.1", "1.01.01.01")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ResolveLinkIfUnset(ctx, "acc", "acme", "1.1", "1.01.01.02")
	require.NoError(t, err)
	assert.False(t, changed)

	// Re-importing refreshes the name and keeps the resolution.
	link.Name = "Caixa Geral"
	require.NoError(t, repo.UpsertUniqueAccount(ctx, link))

	links, err := repo.CompanyLinks(ctx, "acc", "acme")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Caixa Geral", links[0].Name)
	assert.Equal(t, "1.01.01.01", links[0].InternalCode)

	require.NoError(t, repo.SetLink(ctx, "acc", "acme", "1.1", "1.01.01.02"))
	links, err = repo.CompanyLinks(ctx, "acc", "acme")
	require.NoError(t, err)
	assert.Equal(t, "1.01.01.02", links[0].InternalCode)

	assert.ErrorIs(t, repo.SetLink(ctx, "acc", "acme", "9.9", "1.01.01.02"), ErrNotFound)
	_, err = repo.ResolveLinkIfUnset(ctx, "acc", "acme", "9.9", "1.01.01.02")
	assert.ErrorIs(t, err, ErrNotFound)

	other := model.AccountLink{AccountantID: "acc", CompanyID: "beta", ExternalCode: "1/2", Name: "Banco"}
	require.NoError(t, repo.UpsertUniqueAccount(ctx, other))
	require.NoError(t, repo.UpsertUniqueAccount(ctx, model.AccountLink{AccountantID: "acc2", CompanyID: "x", ExternalCode: "1"}))

	all, err := repo.AccountantLinks(ctx, "acc")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	beta, err := repo.CompanyLinks(ctx, "acc", "beta")
	require.NoError(t, err)
	require.Len(t, beta, 1)
	assert.Equal(t, "1/2", beta[0].ExternalCode)
}

func TestRepository_Sheets(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemory())

	for _, p := range []period.Period{{Month: 11, Year: 2023}, {Month: 2, Year: 2024}, {Month: 10, Year: 2023}} {
		raw := model.RawBalanceSheet{CompanyID: "acme", Period: p, ImportedAt: time.Now().UTC()}
		raw.Accounts = []model.RawAccount{{Code: "1", Name: "Ativo", Level: 1}}
		require.NoError(t, repo.PutRawSheet(ctx, raw))

		var acc model.BalanceSheetAccount
		acc.Code = "1.00.00.00"
		acc.CurrentBalance = decimal.NewFromInt(int64(p.Month))
		require.NoError(t, repo.PutSheet(ctx, model.BalanceSheet{CompanyID: "acme", Period: p, Accounts: []model.BalanceSheetAccount{acc}}))
	}

	raws, err := repo.RawSheets(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, raws, 3)
	assert.Equal(t, period.Period{Month: 10, Year: 2023}, raws[0].Period)
	assert.Equal(t, period.Period{Month: 2, Year: 2024}, raws[2].Period)

	sheets, err := repo.Sheets(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, sheets, 3)
	assert.True(t, decimal.NewFromInt(2).Equal(sheets[2].Accounts[0].CurrentBalance))

	s, err := repo.Sheet(ctx, "acme", period.Period{Month: 11, Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, "1.00.00.00", s.Accounts[0].Code)

	_, err = repo.Sheet(ctx, "acme", period.Period{Month: 1, Year: 2020})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.RawSheet(ctx, "acme", period.Period{Month: 1, Year: 2020})
	assert.ErrorIs(t, err, ErrNotFound)

	other, err := repo.Sheets(ctx, "acm")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRepository_DeleteSheet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemory())
	require.NoError(t, repo.SaveCompany(ctx, model.Company{ID: "acme", AccountantID: "acc"}))

	jan := period.Period{Month: 1, Year: 2024}
	feb := period.Period{Month: 2, Year: 2024}
	for _, p := range []period.Period{jan, feb} {
		require.NoError(t, repo.PutRawSheet(ctx, model.RawBalanceSheet{CompanyID: "acme", Period: p}))
		require.NoError(t, repo.PutSheet(ctx, model.BalanceSheet{CompanyID: "acme", Period: p}))
		require.NoError(t, repo.AdvanceLastSheet(ctx, "acme", p))
	}

	require.NoError(t, repo.DeleteSheet(ctx, "acme", feb))
	_, err := repo.RawSheet(ctx, "acme", feb)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Sheet(ctx, "acme", feb)
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := repo.Company(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", c.LastBalanceSheet)

	require.NoError(t, repo.DeleteSheet(ctx, "acme", jan))
	c, err = repo.Company(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, c.LastBalanceSheet)

	assert.ErrorIs(t, repo.DeleteSheet(ctx, "acme", jan), ErrNotFound)
}
