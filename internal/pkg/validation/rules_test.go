package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ogrenci@school.edu.tr"))
	assert.True(t, IsValidEmail("ik@acme-yazilim.com"))
	assert.False(t, IsValidEmail("Ogrenci@School.edu.tr")) // callers lowercase first
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidStudentNo(t *testing.T) {
	assert.True(t, IsValidStudentNo("20201234"))
	assert.False(t, IsValidStudentNo("2020123"))
	assert.False(t, IsValidStudentNo("202012345"))
	assert.False(t, IsValidStudentNo("2020123a"))
	assert.False(t, IsValidStudentNo(""))
}

func TestIsValidTaxNo(t *testing.T) {
	assert.True(t, IsValidTaxNo("1234567890"))
	assert.False(t, IsValidTaxNo("123456789"))
	assert.False(t, IsValidTaxNo("12345678901"))
	assert.False(t, IsValidTaxNo("12345678ab"))
}

func TestIsValidOTPCode(t *testing.T) {
	assert.True(t, IsValidOTPCode("048291"))
	assert.False(t, IsValidOTPCode("48291"))
	assert.False(t, IsValidOTPCode("0482913"))
	assert.False(t, IsValidOTPCode("48a291"))
}

func TestParseDateRange(t *testing.T) {
	start, end, ok := ParseDateRange("2026-07-01", "2026-08-30")
	assert.True(t, ok)
	assert.Equal(t, "2026-07-01", start.Format(DateLayout))
	assert.Equal(t, "2026-08-30", end.Format(DateLayout))

	_, _, ok = ParseDateRange("2026-08-30", "2026-07-01")
	assert.False(t, ok)

	// Zero-length range is refused
	_, _, ok = ParseDateRange("2026-07-01", "2026-07-01")
	assert.False(t, ok)

	_, _, ok = ParseDateRange("01.07.2026", "2026-08-30")
	assert.False(t, ok)
	_, _, ok = ParseDateRange("2026-07-01", "")
	assert.False(t, ok)
}
