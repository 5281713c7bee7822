package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/masterskaya-backend/internal/models"
)

func TestComputeSplit(t *testing.T) {
	split := computeSplit(1000, 0.1)
	assert.Equal(t, float64(900), split.ProviderAmount)
	assert.Equal(t, float64(100), split.PlatformFee)
}

func TestComputeSplit_RoundsToKopecks(t *testing.T) {
	// 3333.33 * 0.1 = 333.333, комиссия округляется до копеек.
	split := computeSplit(3333.33, 0.1)
	assert.Equal(t, float64(333.33), split.PlatformFee)
	assert.Equal(t, float64(3000), split.ProviderAmount)
	assert.InDelta(t, 3333.33, split.ProviderAmount+split.PlatformFee, 0.001)
}

func TestComputeSplit_ZeroRemaining(t *testing.T) {
	// После полного возврата выплачивается ноль.
	split := computeSplit(0, 0.1)
	assert.Equal(t, float64(0), split.ProviderAmount)
	assert.Equal(t, float64(0), split.PlatformFee)
}

func TestComputeSplit_ZeroFeeRate(t *testing.T) {
	split := computeSplit(2500, 0)
	assert.Equal(t, float64(2500), split.ProviderAmount)
	assert.Equal(t, float64(0), split.PlatformFee)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, float64(10.56), roundMoney(10.556))
	assert.Equal(t, float64(10.55), roundMoney(10.554))
	assert.Equal(t, float64(100.01), roundMoney(100.006))
	assert.Equal(t, float64(100), roundMoney(100.004))
	assert.Equal(t, float64(0), roundMoney(0))
}

func TestProofGateGuard(t *testing.T) {
	// Производство и отгрузка открываются только одобренной последней версией.
	assert.NoError(t, proofGateGuard(models.ProofStatusApproved, true))
	assert.ErrorIs(t, proofGateGuard(models.ProofStatusPending, true), ErrProofingRequired)
	assert.ErrorIs(t, proofGateGuard(models.ProofStatusRejected, true), ErrProofingRequired)
	assert.ErrorIs(t, proofGateGuard(models.ProofStatusRevisionRequested, true), ErrProofingRequired)
	assert.ErrorIs(t, proofGateGuard("", false), ErrProofingRequired)
}

func TestReleasedSplit(t *testing.T) {
	now := time.Now()
	provider := 900.0
	fee := 100.0

	released := &models.ProductionOrder{
		EscrowReleasedAt: &now,
		ProviderAmount:   &provider,
		PlatformFee:      &fee,
	}
	split, done := releasedSplit(released)
	assert.True(t, done)
	assert.Equal(t, provider, split.ProviderAmount)
	assert.Equal(t, fee, split.PlatformFee)

	// До выплаты сохранённого расчёта нет, выплата должна выполниться.
	pending := &models.ProductionOrder{}
	split, done = releasedSplit(pending)
	assert.False(t, done)
	assert.Nil(t, split)
}
