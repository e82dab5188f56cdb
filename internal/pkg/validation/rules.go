package validation

import (
	"regexp"
	"time"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// Student number pattern - 8 digits
	StudentNoPattern = `^\d{8}$`

	// Company tax number pattern - 10 digits (vergi numarası)
	TaxNoPattern = `^\d{10}$`

	// OTP code pattern - 6 digits
	OTPCodePattern = `^\d{6}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email     *regexp.Regexp
	StudentNo *regexp.Regexp
	TaxNo     *regexp.Regexp
	OTPCode   *regexp.Regexp
}{
	Email:     regexp.MustCompile(EmailPattern),
	StudentNo: regexp.MustCompile(StudentNoPattern),
	TaxNo:     regexp.MustCompile(TaxNoPattern),
	OTPCode:   regexp.MustCompile(OTPCodePattern),
}

// IsValidEmail reports whether the value looks like an email address
func IsValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(value)
}

// IsValidStudentNo reports whether the value is an 8-digit student number
func IsValidStudentNo(value string) bool {
	return CompiledPatterns.StudentNo.MatchString(value)
}

// IsValidTaxNo reports whether the value is a 10-digit company tax number
func IsValidTaxNo(value string) bool {
	return CompiledPatterns.TaxNo.MatchString(value)
}

// IsValidOTPCode reports whether the value is a 6-digit one-time code
func IsValidOTPCode(value string) bool {
	return CompiledPatterns.OTPCode.MatchString(value)
}

// DateLayout is the wire format for internship dates
const DateLayout = "2006-01-02"

// ParseDateRange parses start/end strings and validates start < end.
// Dates are day-granular; the range is half-open [start, end).
func ParseDateRange(startStr, endStr string) (start, end time.Time, ok bool) {
	start, err := time.Parse(DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
