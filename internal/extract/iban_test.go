package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIBAN_KnownCountryExactLength(t *testing.T) {
	got := NormalizeIBAN("IBAN RO49AAAA1B31007593840000 Banca Transilvania")
	assert.Equal(t, "RO49AAAA1B31007593840000", got)
	assert.Len(t, got, 24)
}

func TestNormalizeIBAN_SpacedGroups(t *testing.T) {
	got := NormalizeIBAN("RO49 AAAA 1B31 0075 9384 0000")
	assert.Equal(t, "RO49AAAA1B31007593840000", got)
}

func TestNormalizeIBAN_Lowercase(t *testing.T) {
	got := NormalizeIBAN("ro49aaaa1b31007593840000")
	assert.Equal(t, "RO49AAAA1B31007593840000", got)
}

func TestNormalizeIBAN_GermanLength(t *testing.T) {
	got := NormalizeIBAN("DE89370400440532013000")
	assert.Equal(t, "DE89370400440532013000", got)
	assert.Len(t, got, 22)
}

func TestNormalizeIBAN_BelgianShortest(t *testing.T) {
	assert.Equal(t, "BE68539007547034", NormalizeIBAN("IBAN: BE68 5390 0754 7034"))
}

func TestNormalizeIBAN_TrailingBankName(t *testing.T) {
	// The known-length slice must stop before the bank name.
	got := NormalizeIBAN("NL91ABNA0417164300 BANK")
	assert.Equal(t, "NL91ABNA0417164300", got)
}

func TestNormalizeIBAN_UnknownCountryFallbackLadder(t *testing.T) {
	// XK is not in the length table; the 15-char candidate is immediately
	// followed by BANKA and rejected, so the 16-char one wins.
	got := NormalizeIBAN("XK0512120123456 BANKA")
	assert.Equal(t, "XK0512120123456B", got)
}

func TestNormalizeIBAN_NoAnchor(t *testing.T) {
	assert.Equal(t, "FARANUMAR", NormalizeIBAN("fara numar"))
}

func TestNormalizeIBAN_GarbageReturnsStrippedUppercased(t *testing.T) {
	assert.Equal(t, "###", NormalizeIBAN(" # # # "))
}
