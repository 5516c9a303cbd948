package secrets

import (
	"errors"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "jobintake"
)

var ErrNoPassword = errors.New("postgres password not found in keychain")

func GetPostgresPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", ErrNoPassword
}

func SetPostgresPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeletePostgresPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

// PostgresDSN returns dsn with the keychain password filled in. A DSN that
// already carries a password, or an account with no stored password, is
// returned unchanged. Both URL and key=value forms are understood.
func PostgresDSN(dsn, keyringAccount string) string {
	pw, err := GetPostgresPassword(keyringAccount)
	if err != nil {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil || u.User == nil {
			return dsn
		}
		if _, has := u.User.Password(); has {
			return dsn
		}
		u.User = url.UserPassword(u.User.Username(), pw)
		return u.String()
	}

	if strings.Contains(dsn, "password=") {
		return dsn
	}
	quoted := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(pw)
	return strings.TrimSpace(dsn + " password='" + quoted + "'")
}
