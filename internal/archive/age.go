package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// AgeSuffix file suffix of encrypted archives
const AgeSuffix = ".age"

// Encrypt writes r to w encrypted to an X25519 recipient ("age1...")
func Encrypt(w io.Writer, r io.Reader, recipient string) error {
	rcpt, err := age.ParseX25519Recipient(strings.TrimSpace(recipient))
	if err != nil {
		return fmt.Errorf("parse age recipient: %w", err)
	}

	encWriter, err := age.Encrypt(w, rcpt)
	if err != nil {
		return fmt.Errorf("create encrypted writer: %w", err)
	}
	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypt archive: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalize encryption: %w", err)
	}
	return nil
}

// Decrypt writes the plaintext of r to w using the identities in identityFile
func Decrypt(w io.Writer, r io.Reader, identityFile string) error {
	data, err := os.ReadFile(identityFile)
	if err != nil {
		return fmt.Errorf("read age identity: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse age identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identities...)
	if err != nil {
		return fmt.Errorf("create decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("decrypt archive: %w", err)
	}
	return nil
}
