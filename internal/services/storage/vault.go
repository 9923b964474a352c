package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// ageHeader is the prefix of age-encrypted files
const ageHeader = "age-encryption.org"

// minPasswordLen guards against trivially weak export passwords.
const minPasswordLen = 8

// Vault encrypts and decrypts exported data files with an age scrypt
// passphrase. Exports are the only place plaintext financial data leaves the
// database, so they are the only place file-level encryption applies.
type Vault struct{}

// IsEncrypted reports whether data carries the age header.
func (Vault) IsEncrypted(data []byte) bool {
	return len(data) > len(ageHeader) && string(data[:len(ageHeader)]) == ageHeader
}

// Encrypt seals data with the given password.
func (v Vault) Encrypt(data []byte, password string) ([]byte, error) {
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("create recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decrypt opens data sealed by Encrypt. A wrong password surfaces as a
// single opaque error so callers can't distinguish it from corruption.
func (v Vault) Decrypt(data []byte, password string) ([]byte, error) {
	if !v.IsEncrypted(data) {
		return nil, fmt.Errorf("data is not age-encrypted")
	}
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, fmt.Errorf("incorrect password or corrupted file")
	}
	return io.ReadAll(r)
}

// EncryptFile seals path in place. Already-encrypted files are left alone.
func (v Vault) EncryptFile(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if v.IsEncrypted(data) {
		return nil
	}
	sealed, err := v.Encrypt(data, password)
	if err != nil {
		return err
	}
	return atomicWrite(path, sealed, 0600)
}

// DecryptFile opens path in place. Plaintext files are left alone.
func (v Vault) DecryptFile(path, password string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !v.IsEncrypted(data) {
		return nil
	}
	plain, err := v.Decrypt(data, password)
	if err != nil {
		return err
	}
	return atomicWrite(path, plain, 0600)
}

// atomicWrite writes via a temp file and rename so a crash never leaves a
// half-written export.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
