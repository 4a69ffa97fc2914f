package license

import (
	"crypto/rand"
	"strings"
)

// Master admin keys work without a registry entry but only for allow-listed
// admin emails. Both lists are defaults; deployments override them through
// configuration.
var (
	DefaultMasterKeys = []string{
		"PERM-ADMIN-XXXX-YYYY-ZZZZ",
		"TANKHAH-PRO-2024-FULL",
	}

	DefaultAdminEmails = []string{
		"admin@tankhah.app",
	}
)

const keyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateKey mints a registry key of the form PREFIX-XXXX-XXXX-XXXX-XXXX.
// Trial keys get the TRIAL prefix, permanent grants PERM.
func GenerateKey(t Type) string {
	prefix := "PERM"
	if t == TypeTrial {
		prefix = "TRIAL"
	}

	buf := make([]byte, 16)
	rand.Read(buf)

	var b strings.Builder
	b.WriteString(prefix)
	for i, c := range buf {
		if i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(keyCharset[int(c)%len(keyCharset)])
	}
	return b.String()
}

// NormalizeKey canonicalizes a submitted key for comparison and storage.
func NormalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// NormalizeEmail canonicalizes an email for allow-list comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
