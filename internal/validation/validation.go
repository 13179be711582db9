package validation

import (
	"net/mail"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	username = NormalizeUsername(username)
	return usernameRe.MatchString(username)
}

func PasswordMinLength() int {
	minStr := os.Getenv("PASSWORD_MIN_LENGTH")
	if minStr == "" {
		return 10
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 8 {
		return 10
	}
	return min
}

func ValidatePassword(password string) bool {
	return len(password) >= PasswordMinLength()
}

func MaxGroupNameLength() int {
	maxStr := os.Getenv("MAX_GROUP_NAME_LENGTH")
	if maxStr == "" {
		return 100
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 100
	}
	return max
}

// Profile bounds. Age and BMI derived from these fields feed goal
// prediction, so a typo'd height must be rejected at the edge rather
// than skew a whole group's aggregates. Zero means "not provided" and
// is always accepted.
const (
	minBirthYear = 1900
	maxHeightCm  = 260
	maxWeightKg  = 400
)

func ValidateBirthYear(year int, now time.Time) bool {
	return year == 0 || (year >= minBirthYear && year <= now.Year())
}

func ValidateHeightCm(heightCm float64) bool {
	return heightCm >= 0 && heightCm <= maxHeightCm
}

func ValidateWeightKg(weightKg float64) bool {
	return weightKg >= 0 && weightKg <= maxWeightKg
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
